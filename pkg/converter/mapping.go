// pkg/converter/mapping.go
package converter

import (
	"github.com/David-Botos/rewards-staging/pkg/config"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

// Column types per dialect. Flags are stored as text so the UNKNOWN
// sentinel survives the load.
var typeTables = map[string]map[model.Kind]string{
	config.DialectPostgres: {
		model.KindText:      "TEXT",
		model.KindNumber:    "DOUBLE PRECISION",
		model.KindTimestamp: "TIMESTAMP",
		model.KindBool:      "BOOLEAN",
		model.KindFlag:      "TEXT",
	},
	config.DialectMySQL: {
		model.KindText:      "TEXT",
		model.KindNumber:    "DOUBLE",
		model.KindTimestamp: "DATETIME(3)",
		model.KindBool:      "BOOLEAN",
		model.KindFlag:      "VARCHAR(16)",
	},
	config.DialectSnowflake: {
		model.KindText:      "VARCHAR",
		model.KindNumber:    "FLOAT",
		model.KindTimestamp: "TIMESTAMP_NTZ(3)",
		model.KindBool:      "BOOLEAN",
		model.KindFlag:      "VARCHAR(16)",
	},
}
