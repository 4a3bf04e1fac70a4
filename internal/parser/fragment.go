package parser

type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentData
	FragmentList
)

// Fragment is one node of a conversational payload: plain text, a structured
// record, or an ordered list of nested fragments.
type Fragment struct {
	Kind  FragmentKind
	Text  string
	Data  map[string]any
	Items []Fragment
}

func Text(s string) Fragment {
	return Fragment{Kind: FragmentText, Text: s}
}

func Data(m map[string]any) Fragment {
	return Fragment{Kind: FragmentData, Data: m}
}

func List(items ...Fragment) Fragment {
	return Fragment{Kind: FragmentList, Items: items}
}

// FromValue builds a fragment tree from loosely typed JSON. Objects shaped like
// message parts ({"kind":"text"}, {"kind":"data"}) or messages ({"parts":[...]})
// are unwrapped; any other object is structured data. Files and unknown values
// become empty lists.
func FromValue(v any) Fragment {
	switch t := v.(type) {
	case string:
		return Text(t)
	case []any:
		items := make([]Fragment, 0, len(t))
		for _, item := range t {
			items = append(items, FromValue(item))
		}
		return List(items...)
	case map[string]any:
		kind, _ := t["kind"].(string)
		if parts, ok := t["parts"].([]any); ok {
			return FromValue(parts)
		}
		switch kind {
		case "text":
			s, _ := t["text"].(string)
			return Text(s)
		case "data":
			return FromValue(t["data"])
		case "file":
			return List()
		}
		return Data(t)
	}
	return List()
}
