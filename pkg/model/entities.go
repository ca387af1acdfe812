package model

// Entity describes one cleaned collection: its export names and its
// staging table layout.
type Entity struct {
	Name    string // receipts, items, brands, users
	Table   string // staging table name
	Columns []Column
}

// CSVFile is the tabular export file name
func (e Entity) CSVFile() string {
	return "cleaned_" + e.Name + ".csv"
}

// JSONFile is the array-of-records export file name
func (e Entity) JSONFile() string {
	return e.Name + ".json"
}

func text(name string) Column      { return Column{Name: name, Kind: KindText, Nullable: true} }
func number(name string) Column    { return Column{Name: name, Kind: KindNumber, Nullable: true} }
func timestamp(name string) Column { return Column{Name: name, Kind: KindTimestamp, Nullable: true} }

func id(name string) Column {
	return Column{Name: name, Kind: KindText, IsPrimaryKey: true}
}

var (
	Receipts = Entity{
		Name:  "receipts",
		Table: "stg_receipts",
		Columns: []Column{
			id("_id"),
			timestamp("createDate"),
			timestamp("dateScanned"),
			timestamp("finishedDate"),
			timestamp("modifyDate"),
			timestamp("pointsAwardedDate"),
			timestamp("purchaseDate"),
			number("bonusPointsEarned"),
			number("pointsEarned"),
			number("purchasedItemCount"),
			number("totalSpent"),
			text("rewardsReceiptStatus"),
			text("userId"),
			text("bonusPointsEarnedReason"),
		},
	}

	Items = Entity{
		Name:  "items",
		Table: "stg_items",
		Columns: []Column{
			{Name: "receipt_id", Kind: KindText},
			text("barcode"),
			text("description"),
			number("finalPrice"),
			number("itemPrice"),
			number("quantityPurchased"),
			text("partnerItemId"),
		},
	}

	// Brand columns are never null once cleaned
	Brands = Entity{
		Name:  "brands",
		Table: "stg_brands",
		Columns: []Column{
			id("_id"),
			{Name: "barcode", Kind: KindText},
			{Name: "brandCode", Kind: KindText},
			{Name: "category", Kind: KindText},
			{Name: "categoryCode", Kind: KindText},
			{Name: "cpg_id", Kind: KindText},
			{Name: "cpg_ref", Kind: KindText},
			{Name: "topBrand", Kind: KindFlag},
			{Name: "name", Kind: KindText},
		},
	}

	Users = Entity{
		Name:  "users",
		Table: "stg_users",
		Columns: []Column{
			{Name: "_id", Kind: KindText},
			timestamp("createdDate"),
			timestamp("lastLogin"),
			text("state"),
			{Name: "role", Kind: KindText},
			{Name: "active", Kind: KindBool, Nullable: true},
		},
	}
)

// Entities lists every cleaned collection in load order
func Entities() []Entity {
	return []Entity{Brands, Items, Receipts, Users}
}

// Receipt is a cleaned receipt header
type Receipt struct {
	ID                      string
	CreateDate              Timestamp
	DateScanned             Timestamp
	FinishedDate            Timestamp
	ModifyDate              Timestamp
	PointsAwardedDate       Timestamp
	PurchaseDate            Timestamp
	BonusPointsEarned       Number
	PointsEarned            Number
	PurchasedItemCount      Number
	TotalSpent              Number
	RewardsReceiptStatus    Text
	UserID                  Text
	BonusPointsEarnedReason Text
}

// Cells returns the receipt as a row aligned with Receipts.Columns
func (r Receipt) Cells() []Cell {
	return []Cell{
		NewText(r.ID),
		r.CreateDate,
		r.DateScanned,
		r.FinishedDate,
		r.ModifyDate,
		r.PointsAwardedDate,
		r.PurchaseDate,
		r.BonusPointsEarned,
		r.PointsEarned,
		r.PurchasedItemCount,
		r.TotalSpent,
		r.RewardsReceiptStatus,
		r.UserID,
		r.BonusPointsEarnedReason,
	}
}

// Item is one line of a receipt's item list. ReceiptID is not enforced
// against the receipts collection.
type Item struct {
	ReceiptID         string
	Barcode           Text
	Description       Text
	FinalPrice        Number
	ItemPrice         Number
	QuantityPurchased Number
	PartnerItemID     Text
}

func (i Item) Cells() []Cell {
	return []Cell{
		NewText(i.ReceiptID),
		i.Barcode,
		i.Description,
		i.FinalPrice,
		i.ItemPrice,
		i.QuantityPurchased,
		i.PartnerItemID,
	}
}

// Brand is a cleaned brand. Every string field holds a value or UNKNOWN.
type Brand struct {
	ID           string
	Barcode      string
	BrandCode    string
	Category     string
	CategoryCode string
	CPGID        string
	CPGRef       string
	TopBrand     Flag
	Name         string
}

func (b Brand) Cells() []Cell {
	return []Cell{
		NewText(b.ID),
		NewText(b.Barcode),
		NewText(b.BrandCode),
		NewText(b.Category),
		NewText(b.CategoryCode),
		NewText(b.CPGID),
		NewText(b.CPGRef),
		b.TopBrand,
		NewText(b.Name),
	}
}

// User is a cleaned user. Duplicate IDs may be present.
type User struct {
	ID          string
	CreatedDate Timestamp
	LastLogin   Timestamp
	State       Text
	Role        string
	Active      Bool
}

func (u User) Cells() []Cell {
	return []Cell{
		NewText(u.ID),
		u.CreatedDate,
		u.LastLogin,
		u.State,
		NewText(u.Role),
		u.Active,
	}
}

// Row is anything that can be laid out as a table row
type Row interface {
	Cells() []Cell
}

// BuildTable materialises rows into a table for the entity
func BuildTable[R Row](e Entity, rows []R) (*Table, error) {
	t := NewTable(e)
	for _, r := range rows {
		if err := t.Append(r.Cells()); err != nil {
			return nil, err
		}
	}
	return t, nil
}
