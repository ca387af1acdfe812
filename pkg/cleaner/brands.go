package cleaner

import (
	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

// CleanBrands normalizes brand documents. Every text column of the result
// holds a value or UNKNOWN.
func CleanBrands(raw []rawdoc.Brand) ([]model.Brand, []model.CleaningOperation) {
	a := newAudit(model.Brands.Name)

	brands := make([]model.Brand, 0, len(raw))
	for _, b := range raw {
		brands = append(brands, cleanBrand(a, b))
	}
	return brands, a.ops
}

func cleanBrand(a *audit, b rawdoc.Brand) model.Brand {
	name := NormalizeText(b.Name.TextPtr())

	return model.Brand{
		ID:           fillUnknown(a, b.ID, "_id", &b.ID),
		Barcode:      fillUnknown(a, b.ID, "barcode", b.Barcode.TextPtr()),
		BrandCode:    fillUnknown(a, b.ID, "brandCode", brandCode(a, b, name)),
		Category:     fillUnknown(a, b.ID, "category", NormalizeText(b.Category.TextPtr())),
		CategoryCode: fillUnknown(a, b.ID, "categoryCode", categoryCode(a, b)),
		CPGID:        fillUnknown(a, b.ID, "cpg_id", b.CPG.ID),
		CPGRef:       fillUnknown(a, b.ID, "cpg_ref", cpgRef(a, b)),
		TopBrand:     topBrand(a, b),
		Name:         fillUnknown(a, b.ID, "name", name),
	}
}

// brandCode keeps a textual code and derives one from the name when the
// code is missing, numeric or not a string at all
func brandCode(a *audit, b rawdoc.Brand, name *string) *string {
	code := b.BrandCode
	if code.Truthy() && code.IsString() && !code.IsDigits() {
		s, _ := code.Str()
		return NormalizeText(&s)
	}

	if !code.Truthy() && !b.Name.Present {
		return nil
	}

	derived := upper(name)
	reason := "missing_brand_code"
	switch {
	case code.IsDigits():
		reason = "numeric_brand_code"
	case code.Truthy():
		reason = "non_string_brand_code"
	}
	a.record(b.ID, "brandCode", model.OpBrandCodeDerived, reason, rawText(code), deref(derived))
	return derived
}

// categoryCode keeps a provided code with spaces underscored, otherwise
// builds one from the category
func categoryCode(a *audit, b rawdoc.Brand) *string {
	if b.CategoryCode.Truthy() {
		return underscored(b.CategoryCode.TextPtr())
	}
	if !b.Category.Present {
		return nil
	}

	built := underscored(upper(NormalizeText(b.Category.TextPtr())))
	a.record(b.ID, "categoryCode", model.OpCategoryCodeBuilt, "missing_category_code", rawText(b.CategoryCode), deref(built))
	return built
}

// cpgRef collapses every truthy reference collection to Cogs
func cpgRef(a *audit, b rawdoc.Brand) *string {
	ref := b.CPG.Ref
	if !ref.Truthy() {
		return ref.TextPtr()
	}
	if s, ok := ref.Str(); ok && s == model.CogsRef {
		return &s
	}

	cogs := model.CogsRef
	a.record(b.ID, "cpg_ref", model.OpCPGRefRewrite, "collapsed_to_cogs", rawText(ref), cogs)
	return &cogs
}

// topBrand defaults an absent flag to false; a null or unreadable flag
// becomes UNKNOWN
func topBrand(a *audit, b rawdoc.Brand) model.Flag {
	v := b.TopBrand
	if !v.Present {
		a.record(b.ID, "topBrand", model.OpDefaultSentinel, "missing_field", nil, "false")
		return model.NewFlag(false)
	}
	if on, ok := v.Bool(); ok {
		return model.NewFlag(on)
	}

	a.record(b.ID, "topBrand", model.OpUnknownFill, "null_or_unreadable", rawText(v), model.Unknown)
	return model.UnknownFlag
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
