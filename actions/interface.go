package actions

import (
	"github.com/relloyd/psvexport/rdbms/shared"
)

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	ConnectionLoader
	SetConnection(connectionName string, d shared.ConnectionDetails) error
	Delete(key string) error
	GetAllKeys() ([]string, error)
}
