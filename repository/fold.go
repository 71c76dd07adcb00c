package repository

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"modernc.org/sqlite"
)

// sqlite's LOWER only folds ASCII letters.
const unicodeLower = "ulower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1, foldArg)
}

func foldArg(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", unicodeLower, v)
	}
}

// lowerFunc names the SQL function that lowercases text the same way
// strings.ToLower does for the connected dialect.
func lowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return unicodeLower
	}
	return "LOWER"
}
