package rawdoc

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Receipt date fields, in export order
var ReceiptDateFields = []string{"createDate", "dateScanned", "finishedDate", "modifyDate", "pointsAwardedDate", "purchaseDate"}

// Receipt numeric fields, in export order
var ReceiptNumericFields = []string{"bonusPointsEarned", "pointsEarned", "purchasedItemCount", "totalSpent"}

// User date fields, in export order
var UserDateFields = []string{"createdDate", "lastLogin"}

// Receipt is the raw shape of a receipts.json line
type Receipt struct {
	ID                      string
	Dates                   map[string]Value // keyed by ReceiptDateFields
	Numbers                 map[string]Value // keyed by ReceiptNumericFields
	RewardsReceiptStatus    Value
	UserID                  Value
	BonusPointsEarnedReason Value
	Items                   []Item
}

// Item is one entry of rewardsReceiptItemList
type Item struct {
	Barcode           Value
	Description       Value
	FinalPrice        Value
	ItemPrice         Value
	QuantityPurchased Value
	PartnerItemID     Value
}

// Brand is the raw shape of a brands.json line
type Brand struct {
	ID           string
	Barcode      Value
	BrandCode    Value
	Category     Value
	CategoryCode Value
	Name         Value
	TopBrand     Value
	CPG          DBRef
}

// DBRef is a cross-collection reference {"$id": {"$oid": ...}, "$ref": ...}
type DBRef struct {
	ID  *string
	Ref Value
}

// User is the raw shape of a users.json line
type User struct {
	ID     string
	Dates  map[string]Value // keyed by UserDateFields
	State  Value
	Role   Value
	Active Value
}

// DecodeReceipt validates and decodes a receipt document
func DecodeReceipt(doc Document) (Receipt, error) {
	id, err := doc.ID()
	if err != nil {
		return Receipt{}, err
	}

	r := Receipt{
		ID:                      id,
		Dates:                   make(map[string]Value, len(ReceiptDateFields)),
		Numbers:                 make(map[string]Value, len(ReceiptNumericFields)),
		RewardsReceiptStatus:    doc.Field("rewardsReceiptStatus"),
		UserID:                  doc.Field("userId"),
		BonusPointsEarnedReason: doc.Field("bonusPointsEarnedReason"),
	}
	for _, name := range ReceiptDateFields {
		r.Dates[name] = doc.Field(name)
	}
	for _, name := range ReceiptNumericFields {
		r.Numbers[name] = doc.Field(name)
	}

	list := doc.Field("rewardsReceiptItemList")
	if list.IsNull() {
		return r, nil
	}

	var entries []Document
	if err := unmarshalList(list, &entries); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrMalformedItemList, err)
	}
	r.Items = make([]Item, 0, len(entries))
	for i, entry := range entries {
		if entry == nil {
			return Receipt{}, fmt.Errorf("%w: entry %d is null", ErrMalformedItemList, i)
		}
		r.Items = append(r.Items, Item{
			Barcode:           entry.Field("barcode"),
			Description:       entry.Field("description"),
			FinalPrice:        entry.Field("finalPrice"),
			ItemPrice:         entry.Field("itemPrice"),
			QuantityPurchased: entry.Field("quantityPurchased"),
			PartnerItemID:     entry.Field("partnerItemId"),
		})
	}
	return r, nil
}

// DecodeBrand validates and decodes a brand document
func DecodeBrand(doc Document) (Brand, error) {
	id, err := doc.ID()
	if err != nil {
		return Brand{}, err
	}

	b := Brand{
		ID:           id,
		Barcode:      doc.Field("barcode"),
		BrandCode:    doc.Field("brandCode"),
		Category:     doc.Field("category"),
		CategoryCode: doc.Field("categoryCode"),
		Name:         doc.Field("name"),
		TopBrand:     doc.Field("topBrand"),
	}

	if cpg, ok := doc.Field("cpg").Object(); ok {
		if oid, ok := cpg.Field("$id").ObjectID(); ok {
			b.CPG.ID = &oid
		}
		b.CPG.Ref = cpg.Field("$ref")
	}
	return b, nil
}

// DecodeUser validates and decodes a user document
func DecodeUser(doc Document) (User, error) {
	id, err := doc.ID()
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:     id,
		Dates:  make(map[string]Value, len(UserDateFields)),
		State:  doc.Field("state"),
		Role:   doc.Field("role"),
		Active: doc.Field("active"),
	}
	for _, name := range UserDateFields {
		u.Dates[name] = doc.Field(name)
	}
	return u, nil
}

// ReadReceipts decodes every line of a receipts export
func ReadReceipts(r io.Reader, path string) ([]Receipt, error) {
	return readAll(r, path, DecodeReceipt)
}

// ReadBrands decodes every line of a brands export
func ReadBrands(r io.Reader, path string) ([]Brand, error) {
	return readAll(r, path, DecodeBrand)
}

// ReadUsers decodes every line of a users export
func ReadUsers(r io.Reader, path string) ([]User, error) {
	return readAll(r, path, DecodeUser)
}

func readAll[T any](r io.Reader, path string, decode func(Document) (T, error)) ([]T, error) {
	var out []T
	err := Scan(r, path, func(_ int, doc Document) error {
		v, err := decode(doc)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func unmarshalList(v Value, out *[]Document) error {
	if v.kind() != '[' {
		return fmt.Errorf("expected a list, got %s", string(v.Raw))
	}
	return json.Unmarshal(v.Raw, out)
}
