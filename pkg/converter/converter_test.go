package converter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/rewards-staging/pkg/config"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

func newConverter(t *testing.T, dialect string) *TypeConverter {
	t.Helper()
	c, err := NewTypeConverter(zaptest.NewLogger(t), dialect)
	require.NoError(t, err)
	return c
}

func TestNewTypeConverter(t *testing.T) {
	_, err := NewTypeConverter(zaptest.NewLogger(t), "oracle")
	assert.Error(t, err)

	c, err := NewTypeConverter(nil, config.DialectSnowflake)
	require.NoError(t, err)
	assert.Equal(t, config.DialectSnowflake, c.Dialect())
}

func TestMapKind(t *testing.T) {
	tests := []struct {
		dialect string
		kind    model.Kind
		want    string
	}{
		{config.DialectPostgres, model.KindNumber, "DOUBLE PRECISION"},
		{config.DialectPostgres, model.KindTimestamp, "TIMESTAMP"},
		{config.DialectPostgres, model.KindFlag, "TEXT"},
		{config.DialectMySQL, model.KindTimestamp, "DATETIME(3)"},
		{config.DialectMySQL, model.KindFlag, "VARCHAR(16)"},
		{config.DialectSnowflake, model.KindText, "VARCHAR"},
		{config.DialectSnowflake, model.KindTimestamp, "TIMESTAMP_NTZ(3)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.kind.String(), func(t *testing.T) {
			got, err := newConverter(t, tt.dialect).MapKind(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := newConverter(t, config.DialectPostgres).MapKind(model.Kind(42))
	assert.Error(t, err)
}

func TestGenerateColumnDefinitions(t *testing.T) {
	t.Run("postgres receipts", func(t *testing.T) {
		defs, err := newConverter(t, config.DialectPostgres).GenerateColumnDefinitions(model.NewTable(model.Receipts))
		require.NoError(t, err)
		require.Len(t, defs, len(model.Receipts.Columns))
		assert.Equal(t, `"_id" TEXT NOT NULL`, defs[0])
		assert.Equal(t, `"createDate" TIMESTAMP NULL`, defs[1])
		assert.Equal(t, `"bonusPointsEarned" DOUBLE PRECISION NULL`, defs[7])
	})

	t.Run("brands are never null", func(t *testing.T) {
		defs, err := newConverter(t, config.DialectSnowflake).GenerateColumnDefinitions(model.NewTable(model.Brands))
		require.NoError(t, err)
		for _, def := range defs {
			assert.Contains(t, def, "NOT NULL")
		}
		assert.Equal(t, `"topBrand" VARCHAR(16) NOT NULL`, defs[7])
	})

	t.Run("mysql quotes with backticks", func(t *testing.T) {
		defs, err := newConverter(t, config.DialectMySQL).GenerateColumnDefinitions(model.NewTable(model.Users))
		require.NoError(t, err)
		assert.Equal(t, "`_id` TEXT NOT NULL", defs[0])
		assert.Equal(t, "`active` BOOLEAN NULL", defs[5])
	})

	t.Run("not null can be relaxed", func(t *testing.T) {
		c, err := NewTypeConverterWithConfig(zaptest.NewLogger(t), config.DialectPostgres,
			TypeConverterConfig{EnforceNotNull: false, LowerCaseIdentifiers: true})
		require.NoError(t, err)
		defs, err := c.GenerateColumnDefinitions(model.NewTable(model.Users))
		require.NoError(t, err)
		assert.Equal(t, `"_id" TEXT NULL`, defs[0])
		assert.Equal(t, `"createddate" TIMESTAMP NULL`, defs[1])
	})
}

func TestQuoteIdentifier(t *testing.T) {
	pg := newConverter(t, config.DialectPostgres)
	assert.Equal(t, `"we""ird"`, pg.QuoteIdentifier(`we"ird`))
	assert.Equal(t, `"staging"."stg_users"`, pg.QualifiedName("staging", "stg_users"))
	assert.Equal(t, `"stg_users"`, pg.QualifiedName("", "stg_users"))

	my := newConverter(t, config.DialectMySQL)
	assert.Equal(t, "`we``ird`", my.QuoteIdentifier("we`ird"))
}

func TestConvertRow(t *testing.T) {
	c := newConverter(t, config.DialectPostgres)
	when := time.Date(2021, 1, 3, 15, 25, 31, 0, time.UTC)

	values, err := c.ConvertRow([]model.Cell{
		model.NewText("b1"),
		model.NullText,
		model.NewNumber(26.5),
		model.Missing,
		model.NewTimestamp(when),
		model.NotATime,
		model.NewBool(false),
		model.NullBool,
		model.UnknownFlag,
		model.NewFlag(true),
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b1", nil, 26.5, nil, when, nil, false, nil, "UNKNOWN", "true", nil}, values)
}

func TestConvertRows(t *testing.T) {
	table, err := model.BuildTable(model.Items, []model.Item{
		{ReceiptID: "r1", Barcode: model.NewText("4011")},
		{ReceiptID: "r1", FinalPrice: model.NewNumber(1)},
	})
	require.NoError(t, err)

	rows, err := newConverter(t, config.DialectMySQL).ConvertRows(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "4011", rows[0][1])
	assert.Nil(t, rows[1][1])
	assert.Equal(t, 1.0, rows[1][3])
}
