package ledger

import "strings"

var categoryLabels = map[Category]string{
	CategoryOperational:  "Operasional",
	CategoryConstruction: "Pembangunan",
	CategoryEducation:    "Pendidikan",
	CategorySocial:       "Sosial",
	CategoryRamadan:      "Ramadhan",
	CategoryGeneral:      "Umum",
}

var typeLabels = map[Type]string{
	TypeIncome:  "Pemasukan",
	TypeExpense: "Pengeluaran",
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentCash:          "Tunai",
	PaymentBankTransfer:  "Transfer Bank",
	PaymentDigitalWallet: "Dompet Digital",
	PaymentOther:         "Lainnya",
}

// Label returns the Indonesian display name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}

	return string(c)
}

// Label returns the Indonesian display name of the type.
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}

	return string(t)
}

// Label returns the Indonesian display name of the payment method.
func (m PaymentMethod) Label() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}

	return string(m)
}

// ParseCategory accepts either the stored code or the display label, in any case.
func ParseCategory(s string) (Category, bool) {
	return lookup(s, categoryLabels, nil)
}

// ParseType accepts the stored code, the display label, or the short forms
// "masuk" and "keluar".
func ParseType(s string) (Type, bool) {
	return lookup(s, typeLabels, map[string]Type{
		"masuk":  TypeIncome,
		"keluar": TypeExpense,
		"in":     TypeIncome,
		"out":    TypeExpense,
	})
}

// ParsePaymentMethod accepts the stored code, the display label, or a few
// common spellings found in spreadsheets.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	return lookup(s, paymentMethodLabels, map[string]PaymentMethod{
		"transfer": PaymentBankTransfer,
		"qris":     PaymentDigitalWallet,
		"e-wallet": PaymentDigitalWallet,
		"ewallet":  PaymentDigitalWallet,
	})
}

func lookup[T ~string](s string, labels map[T]string, aliases map[string]T) (T, bool) {
	key := strings.ToLower(strings.TrimSpace(s))

	for code, label := range labels {
		if key == string(code) || key == strings.ToLower(label) {
			return code, true
		}
	}

	if v, ok := aliases[key]; ok {
		return v, true
	}

	return "", false
}
