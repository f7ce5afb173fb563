package restclient

import (
	"fmt"
	"time"
)

// Header is a request header. Headers keep the order in which interceptors
// produce them.
type Header struct {
	Name  string
	Value string
}

// Parameter is a form parameter, sent in the query string of GET requests
// and in the url-encoded body of POST and PUT requests.
type Parameter struct {
	Name  string
	Value string
}

// Param builds a Parameter. value may be a string, bool, time.Time (RFC 3339),
// fmt.Stringer or any integer type; other types panic.
func Param(name string, value any) Parameter {
	return Parameter{Name: name, Value: toString(value)}
}

// BodyKind tells how a Body is serialized.
type BodyKind int

const (
	// BodyNone sends no payload.
	BodyNone BodyKind = iota
	// BodyForm sends url-encoded parameters.
	BodyForm
	// BodyText sends the textual form of a value verbatim.
	BodyText
	// BodyJSON sends a value encoded as JSON.
	BodyJSON
)

func (k BodyKind) String() string {
	switch k {
	case BodyNone:
		return "none"
	case BodyForm:
		return "form"
	case BodyText:
		return "text"
	case BodyJSON:
		return "json"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// Body describes the payload of a request. The zero value sends nothing.
type Body struct {
	kind   BodyKind
	params []Parameter
	text   string
	value  any
}

// NoBody returns a Body that sends nothing.
func NoBody() Body { return Body{} }

// FormBody returns a url-encoded form made of a copy of params.
func FormBody(params ...Parameter) Body {
	return Body{kind: BodyForm, params: append([]Parameter(nil), params...)}
}

// FormBodyOf returns a url-encoded form built from the exported fields of the
// struct v, in declaration order. See Param for the supported field types.
//
// The parameter name is taken from the `param` field tag or, when absent, the
// field name. Fields tagged `param:"-"` are skipped. It panics if v is not a
// struct or a pointer to one.
func FormBodyOf(v any) Body {
	return Body{kind: BodyForm, params: structParams(v)}
}

// TextBody returns a Body whose content is the textual form of content, as
// formatted by fmt.Sprint, sent as text/plain.
func TextBody(content any) Body {
	return Body{kind: BodyText, text: fmt.Sprint(content)}
}

// JSONBody returns a Body with v encoded by encoding/json at dispatch time,
// sent as application/json.
func JSONBody(v any) Body {
	return Body{kind: BodyJSON, value: v}
}

// Kind returns the serialization of b.
func (b Body) Kind() BodyKind { return b.kind }

// Parameters returns a copy of the form parameters of b.
func (b Body) Parameters() []Parameter {
	return append([]Parameter(nil), b.params...)
}

// Text returns the content of a text body.
func (b Body) Text() string { return b.text }

// String describes b for logging. Parameter values are not included.
func (b Body) String() string {
	switch b.kind {
	case BodyForm:
		names := make([]string, len(b.params))
		for i, p := range b.params {
			names[i] = p.Name
		}
		return fmt.Sprintf("form%v", names)
	case BodyText:
		return fmt.Sprintf("text(%d bytes)", len(b.text))
	case BodyJSON:
		return fmt.Sprintf("json(%T)", b.value)
	default:
		return "none"
	}
}

func toString(value any) string {
	switch t := value.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return t.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", value)
	default:
		panic(fmt.Sprintf("type %T is unsupported", value))
	}
}
