package importer

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned means one amount column plus a type column.
	amountSigned amountMode = iota
	// amountSplit means separate debit and credit columns, as in bank
	// statements ("Debet"/"Kredit").
	amountSplit
)

// Profile describes the column layout of a spreadsheet the importer accepts.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // amountSigned
	TypeCol    string // amountSigned
	DebitCol   string // amountSplit
	CreditCol  string // amountSplit

	// Optional columns. A missing CategoryCol falls back to the parser's
	// default category.
	CategoryCol  string
	DonorCol     string
	PhoneCol     string
	MethodCol    string
	ReferenceCol string
	NotesCol     string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol, p.TypeCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	if p.CategoryCol != "" {
		cols = append(cols, p.CategoryCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first. Header
// matching is case-insensitive.
var profiles = []Profile{
	{
		Name:         "buku kas",
		DateCol:      "tanggal",
		DescCol:      "keterangan",
		AmountMode:   amountSigned,
		AmountCol:    "jumlah",
		TypeCol:      "jenis",
		CategoryCol:  "kategori",
		DonorCol:     "donatur",
		PhoneCol:     "telepon",
		MethodCol:    "metode",
		ReferenceCol: "referensi",
		NotesCol:     "catatan",
	},
	{
		Name:         "ledger",
		DateCol:      "date",
		DescCol:      "description",
		AmountMode:   amountSigned,
		AmountCol:    "amount",
		TypeCol:      "type",
		CategoryCol:  "category",
		DonorCol:     "donor_name",
		PhoneCol:     "donor_phone",
		MethodCol:    "payment_method",
		ReferenceCol: "reference_number",
		NotesCol:     "notes",
	},
	{
		Name:       "mutasi rekening",
		DateCol:    "tanggal",
		DescCol:    "keterangan",
		AmountMode: amountSplit,
		DebitCol:   "debet",
		CreditCol:  "kredit",
	},
}
