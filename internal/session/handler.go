package session

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// callbackHandler accepts every inbound method call on the private
// connection, whatever its path, interface, or member: the member
// name becomes the message tag, the first string argument the
// payload. The generated script is the only caller; it addresses
// this connection's unique name directly.
type callbackHandler struct {
	log    *MessageLog
	logger *slog.Logger
}

var _ dbus.Handler = (*callbackHandler)(nil)

func (h *callbackHandler) LookupObject(path dbus.ObjectPath) (dbus.ServerObject, bool) {
	return h, true
}

func (h *callbackHandler) LookupInterface(name string) (dbus.Interface, bool) {
	return h, true
}

func (h *callbackHandler) LookupMethod(name string) (dbus.Method, bool) {
	return &tagMethod{tag: name, log: h.log, logger: h.logger}, true
}

// tagMethod appends one (tag, payload) pair per invocation.
type tagMethod struct {
	tag    string
	log    *MessageLog
	logger *slog.Logger
}

func (m *tagMethod) Call(values ...interface{}) ([]interface{}, error) {
	payload := ""
	if len(values) > 0 {
		if s, ok := values[0].(string); ok {
			payload = s
		}
	}
	m.logger.Debug("callback", "tag", m.tag, "payload", payload)
	m.log.Append(m.tag, payload)
	return nil, nil
}

func (m *tagMethod) NumArguments() int { return 1 }

func (m *tagMethod) ArgumentValue(position int) interface{} { return "" }

func (m *tagMethod) NumReturns() int { return 0 }

func (m *tagMethod) ReturnValue(position int) interface{} { return nil }
