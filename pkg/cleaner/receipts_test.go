package cleaner

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/rewards-staging/pkg/export"
	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

func readReceipts(t *testing.T, lines ...string) []rawdoc.Receipt {
	t.Helper()
	raw, err := rawdoc.ReadReceipts(strings.NewReader(strings.Join(lines, "\n")), "receipts.json")
	require.NoError(t, err)
	return raw
}

func opsFor(ops []model.CleaningOperation, operation string) []model.CleaningOperation {
	var out []model.CleaningOperation
	for _, op := range ops {
		if op.CleaningOperation == operation {
			out = append(out, op)
		}
	}
	return out
}

func TestCleanReceipts(t *testing.T) {
	raw := readReceipts(t,
		`{"_id":{"$oid":"r1"},"createDate":{"$date":1609687531000},"dateScanned":null,"finishedDate":{"$date":"bogus"},"bonusPointsEarned":"500","pointsEarned":"abc","totalSpent":"26.00","rewardsReceiptStatus":"FINISHED","userId":"u1","rewardsReceiptItemList":[{"barcode":"4011","finalPrice":"26.00","quantityPurchased":5},{"description":"ITEM X","itemPrice":""}]}`,
		`{"_id":{"$oid":"r2"},"bonusPointsEarnedReason":null}`,
		`{"_id":{"$oid":"r3"},"bonusPointsEarnedReason":"Receipt number 1 completed","rewardsReceiptItemList":[]}`,
	)

	receipts, items, ops := CleanReceipts(raw)
	require.Len(t, receipts, 3)
	require.Len(t, items, 2)

	t.Run("dates", func(t *testing.T) {
		r := receipts[0]
		require.True(t, r.CreateDate.Valid)
		assert.True(t, r.CreateDate.Time.Equal(time.UnixMilli(1609687531000)))
		assert.Equal(t, time.UTC, r.CreateDate.Time.Location())
		assert.Equal(t, model.NotATime, r.DateScanned, "null date")
		assert.Equal(t, model.NotATime, r.FinishedDate, "malformed date")
		assert.Equal(t, model.NotATime, r.ModifyDate, "absent date")

		malformed := opsFor(ops, model.OpNotATime)
		require.Len(t, malformed, 1)
		assert.Equal(t, "finishedDate", malformed[0].ColumnName)
		assert.Equal(t, "r1", malformed[0].RowIdentifier)
	})

	t.Run("numbers", func(t *testing.T) {
		r := receipts[0]
		assert.Equal(t, model.NewNumber(500), r.BonusPointsEarned)
		assert.Equal(t, model.Missing, r.PointsEarned)
		assert.Equal(t, model.Missing, r.PurchasedItemCount)
		assert.Equal(t, model.NewNumber(26), r.TotalSpent)

		coerced := opsFor(ops, model.OpNumericMissing)
		require.Len(t, coerced, 1)
		assert.Equal(t, "pointsEarned", coerced[0].ColumnName)
	})

	t.Run("bonus reason follows key presence", func(t *testing.T) {
		assert.Equal(t, model.NewText(model.Unknown), receipts[0].BonusPointsEarnedReason)
		assert.Equal(t, model.NullText, receipts[1].BonusPointsEarnedReason)
		assert.Equal(t, model.NewText("Receipt number 1 completed"), receipts[2].BonusPointsEarnedReason)
	})

	t.Run("status and user pass through", func(t *testing.T) {
		assert.Equal(t, model.NewText("FINISHED"), receipts[0].RewardsReceiptStatus)
		assert.Equal(t, model.NewText("u1"), receipts[0].UserID)
		assert.Equal(t, model.NullText, receipts[1].UserID)
	})

	t.Run("items", func(t *testing.T) {
		first, second := items[0], items[1]
		assert.Equal(t, "r1", first.ReceiptID)
		assert.Equal(t, "r1", second.ReceiptID)

		assert.Equal(t, model.NewText("4011"), first.Barcode)
		assert.Equal(t, model.NewText(model.ItemNotFound), first.Description)
		assert.Equal(t, model.NewNumber(26), first.FinalPrice)
		assert.Equal(t, model.NewNumber(5), first.QuantityPurchased)
		assert.Equal(t, model.Missing, first.ItemPrice)
		assert.Equal(t, model.NullText, first.PartnerItemID)

		assert.Equal(t, model.NewText("ITEM X"), second.Description)
		assert.Equal(t, model.Missing, second.ItemPrice)
		assert.Equal(t, model.NullText, second.Barcode)
	})
}

func TestCleanReceiptsOutOfRangeDates(t *testing.T) {
	raw := readReceipts(t,
		`{"_id":{"$oid":"r1"},"createDate":{"$date":253402300800000},"modifyDate":{"$date":1e30},"dateScanned":{"$date":1609687531000}}`,
	)

	receipts, _, ops := CleanReceipts(raw)
	require.Len(t, receipts, 1)
	assert.Equal(t, model.NotATime, receipts[0].CreateDate)
	assert.Equal(t, model.NotATime, receipts[0].ModifyDate)
	assert.True(t, receipts[0].DateScanned.Valid)
	assert.Len(t, opsFor(ops, model.OpNotATime), 2)

	table, err := model.BuildTable(model.Receipts, receipts)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), model.Receipts.JSONFile())
	require.NoError(t, export.WriteJSON(path, table))

	back, err := export.ReadJSON(path, model.Receipts)
	require.NoError(t, err)
	require.Equal(t, table.Len(), back.Len())
	for i, cell := range table.Rows[0] {
		assert.Equal(t, cell.CSV(), back.Rows[0][i].CSV(), table.Columns[i].Name)
	}
}

func TestCleanReceiptsItemOrder(t *testing.T) {
	raw := readReceipts(t,
		`{"_id":{"$oid":"a"},"rewardsReceiptItemList":[{"barcode":"1"},{"barcode":"2"}]}`,
		`{"_id":{"$oid":"b"}}`,
		`{"_id":{"$oid":"c"},"rewardsReceiptItemList":[{"barcode":"3"}]}`,
	)

	receipts, items, _ := CleanReceipts(raw)
	require.Len(t, receipts, 3)
	require.Len(t, items, 3)

	var got []string
	for _, it := range items {
		got = append(got, it.ReceiptID+":"+it.Barcode.String)
	}
	assert.Equal(t, []string{"a:1", "a:2", "c:3"}, got)
}
