package postgres

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

func pqArray(values []string) driver.Valuer {
	return pq.StringArray(values)
}
