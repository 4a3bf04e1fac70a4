// Package protocol holds the JSON-RPC 2.0 envelope and the A2A message,
// task and artifact shapes exchanged on POST /a2a.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const Version = "2.0"

const (
	MethodMessageSend = "message/send"
	MethodExecute     = "execute"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const (
	KindText = "text"
	KindData = "data"
	KindFile = "file"

	KindMessage = "message"
	KindTask    = "task"

	RoleUser  = "user"
	RoleAgent = "agent"
)

type TaskState string

const (
	StateWorking       TaskState = "working"
	StateInputRequired TaskState = "input-required"
	StateCompleted     TaskState = "completed"
	StateFailed        TaskState = "failed"
)

const (
	ModeText = "text/plain"
	ModePNG  = "image/png"
	ModeSVG  = "image/svg+xml"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *Task           `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Part is one message part. Data may be a JSON object (structured fields)
// or a JSON array (prior conversation turns).
type Part struct {
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
	Data    any    `json:"data,omitempty"`
	FileURL string `json:"file_url,omitempty"`
}

type Message struct {
	Kind      string         `json:"kind"`
	Role      string         `json:"role"`
	Parts     []Part         `json:"parts"`
	MessageID string         `json:"messageId"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type PushNotificationConfig struct {
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`
}

// MessageConfiguration fields are optional on the wire; nil means "use the
// agent default".
type MessageConfiguration struct {
	Blocking               *bool                   `json:"blocking,omitempty"`
	AcceptedOutputModes    []string                `json:"acceptedOutputModes,omitempty"`
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitempty"`
}

type MessageParams struct {
	Message       Message               `json:"message"`
	Configuration *MessageConfiguration `json:"configuration,omitempty"`
}

type ExecuteParams struct {
	ContextID string    `json:"contextId,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	Messages  []Message `json:"messages"`
}

type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp"`
}

type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name"`
	Parts      []Part `json:"parts"`
}

type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts"`
	History   []Message  `json:"history"`
	Kind      string     `json:"kind"`
}

func TextPart(text string) Part {
	return Part{Kind: KindText, Text: text}
}

func FilePart(url string) Part {
	return Part{Kind: KindFile, FileURL: url}
}

func NewID() string {
	return uuid.NewString()
}

// AgentMessage builds an agent-role message with a fresh message id.
func AgentMessage(taskID, contextID string, parts ...Part) Message {
	return Message{
		Kind:      KindMessage,
		Role:      RoleAgent,
		Parts:     parts,
		MessageID: NewID(),
		TaskID:    taskID,
		ContextID: contextID,
	}
}

func NewStatus(state TaskState, msg *Message, now time.Time) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   msg,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

func Success(id json.RawMessage, task *Task) Response {
	return Response{JSONRPC: Version, ID: id, Result: task}
}

func Failure(id json.RawMessage, code int, message string, data any) Response {
	return Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: message, Data: data}}
}

// AcceptsImages reports whether PNG file parts may be returned.
func (c MessageConfiguration) AcceptsImages() bool {
	for _, m := range c.AcceptedOutputModes {
		if m == ModePNG || m == "image/*" || m == "*/*" {
			return true
		}
	}
	return false
}

// IsBlocking defaults to true when unset.
func (c MessageConfiguration) IsBlocking() bool {
	return c.Blocking == nil || *c.Blocking
}

// Merge returns c with any field set in over replacing it. Neither input is modified.
func (c MessageConfiguration) Merge(over *MessageConfiguration) MessageConfiguration {
	out := MessageConfiguration{
		Blocking:               c.Blocking,
		AcceptedOutputModes:    append([]string(nil), c.AcceptedOutputModes...),
		PushNotificationConfig: c.PushNotificationConfig,
	}
	if over == nil {
		return out
	}
	if over.Blocking != nil {
		b := *over.Blocking
		out.Blocking = &b
	}
	if len(over.AcceptedOutputModes) > 0 {
		out.AcceptedOutputModes = append([]string(nil), over.AcceptedOutputModes...)
	}
	if over.PushNotificationConfig != nil {
		p := *over.PushNotificationConfig
		out.PushNotificationConfig = &p
	}
	return out
}
