package services

// LineItem is one estimate row after normalization. L1 and L2 are the major
// and middle categories; L3 and L4 are optional finer groupings.
type LineItem struct {
	SortKey   float64
	L1        string
	L2        string
	L3        string
	L4        string
	Name      string
	Spec      string
	Qty       float64
	Unit      string
	CostPrice float64
	Rate      float64
	UnitPrice float64
	Amount    float64
	Remark    string
}

// CompanyProfile is the issuer block printed on the cover and summary pages.
type CompanyProfile struct {
	Name    string
	CEO     string
	Address string
	Phone   string
	Fax     string
}

// DocumentInfo is pass-through metadata for the cover and summary pages.
type DocumentInfo struct {
	ClientName  string
	ProjectName string
	Location    string
	Term        string
	Expiry      string
	Date        string
	Company     CompanyProfile
}
