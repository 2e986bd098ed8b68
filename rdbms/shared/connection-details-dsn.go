package shared

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/constants"
	"github.com/xo/dburl"
)

// DsnConnectionDetails is a simple struct to hold a DSN only.
type DsnConnectionDetails struct {
	Dsn            string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
	OriginalScheme string
}

// String returns the DSN with redacted password.
func (d DsnConnectionDetails) String() string {
	return RedactDsn(d.OriginalScheme, d.Dsn)
}

// Parse validates the DSN and returns the parsed dburl.URL.
func (d *DsnConnectionDetails) Parse() (*dburl.URL, error) {
	if d.Dsn == "" { // if the Dsn is invalid...
		return nil, errors.New("DSN not found")
	}
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return nil, errors.Wrap(err, "DSN could not be parsed")
	}
	d.OriginalScheme = u.OriginalScheme // save the full connection type.
	return u, nil
}

// RedactDsn hides the password in dsn. Unparseable DSNs are fully redacted.
func RedactDsn(connectionType string, dsn string) string {
	switch connectionType {
	case constants.ConnectionTypeNetezza:
		n := NetezzaConnectionDetails{Dsn: dsn}
		return n.String()
	case constants.ConnectionTypeSqlite:
		return dsn
	case constants.ConnectionTypeSnowflake:
		u, err := url.Parse(dsn)
		if err != nil {
			return "xxxxx"
		}
		return u.Redacted()
	default:
		u, err := dburl.Parse(dsn)
		if err != nil {
			return "xxxxx"
		}
		return u.Redacted()
	}
}

// BuildDsn constructs a URL style DSN from individual connection values.
// This supports the host/user/password/database style connection descriptors.
func BuildDsn(connectionType, host, port, user, password, database string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("missing host for %v connection", connectionType)
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	}
	u := &url.URL{Scheme: connectionType, Host: host}
	if user != "" {
		u.User = url.UserPassword(user, password)
	}
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		if database != "" {
			q := url.Values{}
			q.Set("database", database)
			u.RawQuery = q.Encode()
		}
	case constants.ConnectionTypePostgres, constants.ConnectionTypeMySql:
		u.Path = "/" + strings.TrimLeft(database, "/")
	default:
		return "", fmt.Errorf("unable to build a DSN for connection type %q: supply a dsn instead", connectionType)
	}
	return u.String(), nil
}
