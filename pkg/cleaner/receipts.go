package cleaner

import (
	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

// CleanReceipts converts raw receipts into receipt headers and a flat item
// list. Receipts without items still yield a header; item order follows
// receipt order then list order.
func CleanReceipts(raw []rawdoc.Receipt) ([]model.Receipt, []model.Item, []model.CleaningOperation) {
	receiptAudit := newAudit(model.Receipts.Name)
	itemAudit := newAudit(model.Items.Name)

	receipts := make([]model.Receipt, 0, len(raw))
	var items []model.Item

	for _, r := range raw {
		receipts = append(receipts, cleanReceipt(receiptAudit, r))
		for _, it := range r.Items {
			items = append(items, cleanItem(itemAudit, r.ID, it))
		}
	}

	ops := append(receiptAudit.ops, itemAudit.ops...)
	return receipts, items, ops
}

func cleanReceipt(a *audit, r rawdoc.Receipt) model.Receipt {
	out := model.Receipt{
		ID:                   r.ID,
		RewardsReceiptStatus: model.TextFromPtr(r.RewardsReceiptStatus.TextPtr()),
		UserID:               model.TextFromPtr(r.UserID.TextPtr()),
	}

	// Aligned with rawdoc.ReceiptDateFields
	dates := []*model.Timestamp{
		&out.CreateDate,
		&out.DateScanned,
		&out.FinishedDate,
		&out.ModifyDate,
		&out.PointsAwardedDate,
		&out.PurchaseDate,
	}
	for i, name := range rawdoc.ReceiptDateFields {
		*dates[i] = toTimestamp(a, r.ID, name, r.Dates[name])
	}

	// Aligned with rawdoc.ReceiptNumericFields
	numbers := []*model.Number{
		&out.BonusPointsEarned,
		&out.PointsEarned,
		&out.PurchasedItemCount,
		&out.TotalSpent,
	}
	for i, name := range rawdoc.ReceiptNumericFields {
		*numbers[i] = toNumber(a, r.ID, name, r.Numbers[name])
	}

	out.BonusPointsEarnedReason = withDefault(a, r.ID, "bonusPointsEarnedReason", r.BonusPointsEarnedReason, model.Unknown)
	return out
}

func cleanItem(a *audit, receiptID string, it rawdoc.Item) model.Item {
	return model.Item{
		ReceiptID:         receiptID,
		Barcode:           model.TextFromPtr(it.Barcode.TextPtr()),
		Description:       withDefault(a, receiptID, "description", it.Description, model.ItemNotFound),
		FinalPrice:        toNumber(a, receiptID, "finalPrice", it.FinalPrice),
		ItemPrice:         toNumber(a, receiptID, "itemPrice", it.ItemPrice),
		QuantityPurchased: toNumber(a, receiptID, "quantityPurchased", it.QuantityPurchased),
		PartnerItemID:     model.TextFromPtr(it.PartnerItemID.TextPtr()),
	}
}
