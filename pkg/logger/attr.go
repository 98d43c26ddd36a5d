package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Tenant records a tenant slug under the key "tenant".
func Tenant(slug string) slog.Attr {
	return slog.String("tenant", slug)
}

// Host records the request host under the key "host".
func Host(host string) slog.Attr {
	return slog.String("host", host)
}

// PathPrefix records the active URL path prefix under the key "path_prefix".
func PathPrefix(prefix string) slog.Attr {
	return slog.String("path_prefix", prefix)
}

// Database records a database identifier under the key "database".
func Database(name string) slog.Attr {
	return slog.String("database", name)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}
