package livelog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ArgKind is the closed set of argument shapes the normalizer folds.
type ArgKind uint8

const (
	ArgText ArgKind = iota + 1
	ArgError
	ArgFields
	ArgOpaque
)

// Arg is one classified call argument.
type Arg struct {
	Kind   ArgKind
	Text   string
	Err    error
	Fields []Field
	Value  any
}

// messageSeparator joins consecutive text parts of a message.
const messageSeparator = "; "

// Classify converts a call argument into its variant. Untyped nil is
// reported as not ok and skipped by Parse.
//
// Strings are text, anything implementing error is an error, string-keyed
// maps, Metadata, Field and []Field are field sets, the rest is opaque.
func Classify(v any) (Arg, bool) {
	switch vv := v.(type) {
	case nil:
		return Arg{}, false
	case string:
		return Arg{Kind: ArgText, Text: vv}, true
	case error:
		return Arg{Kind: ArgError, Err: vv}, true
	case Field:
		return Arg{Kind: ArgFields, Fields: []Field{vv}}, true
	case []Field:
		return Arg{Kind: ArgFields, Fields: copyFields(nil, vv)}, true
	case Metadata:
		return Arg{Kind: ArgFields, Fields: vv.Fields()}, true
	case map[string]any:
		return Arg{Kind: ArgFields, Fields: Metadata(vv).Fields()}, true
	}
	if fs, ok := mapFields(v); ok {
		return Arg{Kind: ArgFields, Fields: fs}, true
	}
	return Arg{Kind: ArgOpaque, Value: v}, true
}

// mapFields handles map types with string keys other than map[string]any.
func mapFields(v any) ([]Field, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, FieldOf(k.String(), rv.MapIndex(k).Interface()))
	}
	return out, true
}

// Parse folds args into a Message stamped with at. It returns nil when
// there is nothing to log. A single []any argument is flattened one level.
func Parse(level Level, at time.Time, args []any) *Message {
	args = flattenArgs(args)
	if len(args) == 0 {
		return nil
	}
	msg := newMessage(level, at)
	for _, v := range args {
		arg, ok := Classify(v)
		if !ok {
			continue
		}
		fold(msg, arg)
	}
	return msg
}

func flattenArgs(args []any) []any {
	if len(args) == 1 {
		if inner, ok := args[0].([]any); ok {
			return inner
		}
	}
	return args
}

func fold(msg *Message, arg Arg) {
	switch arg.Kind {
	case ArgText:
		appendText(msg, arg.Text)
	case ArgError:
		appendText(msg, strings.TrimSpace(errorText(arg.Err)))
		info := DescribeError(arg.Err)
		if _, ok := msg.Get(KeyError); !ok {
			msg.Set(Any(KeyError, info))
			return
		}
		others := append(copyErrorInfos(msg.OtherErrors()), info)
		msg.Set(Any(KeyOtherErrors, others))
	case ArgFields:
		for _, f := range arg.Fields {
			msg.Set(f)
		}
	case ArgOpaque:
		others := append(append([]any(nil), msg.Others()...), arg.Value)
		msg.Set(Any(KeyOthers, others))
	}
}

func appendText(msg *Message, s string) {
	if prev := msg.Text(); prev != "" {
		s = prev + messageSeparator + s
	}
	msg.Set(Str(KeyMessage, s))
}

func copyErrorInfos(in []*ErrorInfo) []*ErrorInfo {
	return append(make([]*ErrorInfo, 0, len(in)+1), in...)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

// DescribeError captures err and its whole cause chain. Wrapper layers
// whose text equals their cause's text (pkg/errors withStack around
// withMessage, for one) are collapsed into a single entry.
func DescribeError(err error) *ErrorInfo {
	if isNilPointer(err) {
		return &ErrorInfo{Name: errorName(err), Message: nilErrorText}
	}
	info := &ErrorInfo{
		Name:    errorName(err),
		Message: errorText(err),
		Stack:   errorStack(err),
	}
	if cause := nextCause(err); cause != nil {
		info.Cause = DescribeError(cause)
	}
	return info
}

func nextCause(err error) error {
	text := errorText(err)
	c := unwrapOnce(err)
	for c != nil && !isNilPointer(c) && errorText(c) == text {
		c = unwrapOnce(c)
	}
	if isNilPointer(c) {
		return nil
	}
	return c
}

func unwrapOnce(err error) (cause error) {
	defer func() {
		if recover() != nil {
			cause = nil
		}
	}()
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return nil
}

func errorName(err error) (name string) {
	typeName := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	defer func() {
		if recover() != nil {
			name = typeName
		}
	}()
	if n, ok := err.(interface{ Name() string }); ok {
		return n.Name()
	}
	return typeName
}

func errorStack(err error) (stack string) {
	defer func() {
		if recover() != nil {
			stack = ""
		}
	}()
	switch e := err.(type) {
	case stackTracer:
		return strings.TrimPrefix(fmt.Sprintf("%+v", e.StackTrace()), "\n")
	case interface{ Stack() string }:
		return e.Stack()
	}
	return ""
}

const nilErrorText = "<nil>"

// errorText calls err.Error() and survives panicking implementations.
// A nil pointer stored in the interface renders as "<nil>", as zap does.
func errorText(err error) (text string) {
	defer func() {
		if r := recover(); r != nil {
			if isNilPointer(err) {
				text = nilErrorText
				return
			}
			text = fmt.Sprintf("PANIC=%v", r)
		}
	}()
	return err.Error()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
