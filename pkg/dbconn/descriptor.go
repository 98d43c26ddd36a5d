package dbconn

import (
	"maps"
	"net"
	"net/url"
	"strconv"
)

type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineSQLite   Engine = "sqlite"
)

// Descriptor holds everything needed to open a database connection.
// For SQLite, Name is the path of the database file.
type Descriptor struct {
	Engine   Engine
	Name     string
	Host     string
	Port     int
	User     string
	Password string
	Options  map[string]string
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	d.Options = maps.Clone(d.Options)
	return d
}

// IsZero reports whether d is the empty descriptor.
func (d Descriptor) IsZero() bool {
	return d.Engine == "" && d.Name == ""
}

// DSN renders d as a pgx connection URL or a SQLite file name.
func (d Descriptor) DSN() string {
	query := url.Values{}
	for k, v := range d.Options {
		query.Set(k, v)
	}

	if d.Engine == EngineSQLite {
		if len(query) == 0 {
			return d.Name
		}
		return "file:" + d.Name + "?" + query.Encode()
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     d.Host,
		Path:     "/" + d.Name,
		RawQuery: query.Encode(),
	}
	if d.Port > 0 {
		u.Host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
	switch {
	case d.User != "" && d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	return u.String()
}

// Redacted is DSN with the password masked, for logs.
func (d Descriptor) Redacted() string {
	if d.Password != "" {
		d.Password = "xxxxx"
	}
	return d.DSN()
}
