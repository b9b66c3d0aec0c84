package records

import "sort"

// insuranceCompanies is the closed set of insurers a policy may name.
var insuranceCompanies = []string{
	"Agriculture Insurance Company of India Ltd",
	"ECGC Ltd (Export Credit Guarantee Corporation)",
	"National Insurance Company Ltd",
	"New India Assurance Company Ltd",
	"Oriental Insurance Company Ltd",
	"United India Insurance Company Ltd",
	"Acko General Insurance Ltd",
	"Bajaj Allianz General Insurance Co Ltd",
	"Bharti AXA / Zurich Kotak General Insurance Co Ltd",
	"Cholamandalam MS General Insurance Co Ltd",
	"Edelweiss / Zuno General Insurance Ltd",
	"Future Generali India Insurance Co Ltd",
	"Go Digit General Insurance Ltd",
	"HDFC ERGO General Insurance Co Ltd",
	"ICICI Lombard General Insurance Co Ltd",
	"IFFCO-Tokio General Insurance Co Ltd",
	"Kotak Mahindra General Insurance Co Ltd",
	"Liberty General Insurance Ltd",
	"Magma HDI / Magma General Insurance Co Ltd",
	"Navi General Insurance Ltd",
	"Raheja QBE General Insurance Co Ltd",
	"Reliance General Insurance Co Ltd",
	"Royal Sundaram General Insurance Co Ltd",
	"SBI General Insurance Co Ltd",
	"Shriram General Insurance Co Ltd",
	"Tata AIG General Insurance Co Ltd",
	"Universal Sompo General Insurance Co Ltd",
}

var insuranceCompanySet = func() map[string]bool {
	set := make(map[string]bool, len(insuranceCompanies))
	for _, c := range insuranceCompanies {
		set[c] = true
	}
	return set
}()

// InsuranceCompanies returns the selectable insurers, sorted by name.
func InsuranceCompanies() []string {
	out := make([]string, len(insuranceCompanies))
	copy(out, insuranceCompanies)
	sort.Strings(out)
	return out
}

// IsInsuranceCompany reports whether name is one of the selectable insurers.
func IsInsuranceCompany(name string) bool {
	return insuranceCompanySet[name]
}
