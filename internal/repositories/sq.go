package repositories

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var SqBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrBadQuery = errors.NewWithCode(errors.CodeStoreFailure, "failed to build query")
