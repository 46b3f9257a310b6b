package consultation

import (
	"fmt"
	"strings"
)

// Catalog kinds accepted by Search.
const (
	CatalogSymptoms       = "symptoms"
	CatalogDiagnoses      = "diagnoses"
	CatalogMedications    = "medications"
	CatalogInvestigations = "investigations"
	CatalogAdvice         = "advice"
)

var symptomCatalog = []string{
	"Fever", "Cough", "Cold", "Headache", "Body ache", "Sore throat",
	"Vomiting", "Nausea", "Diarrhea", "Constipation", "Abdominal pain",
	"Chest pain", "Breathlessness", "Palpitations", "Dizziness", "Fatigue",
	"Loss of appetite", "Weight loss", "Joint pain", "Back pain",
	"Skin rash", "Itching", "Burning micturition", "Swelling of feet",
}

var diagnosisCatalog = []string{
	"Viral fever", "Upper respiratory tract infection", "Acute gastritis",
	"Acute gastroenteritis", "Hypertension", "Type 2 diabetes mellitus",
	"Hypothyroidism", "Bronchial asthma", "Migraine", "Anemia",
	"Urinary tract infection", "Dengue fever", "Typhoid fever",
	"Allergic rhinitis", "Osteoarthritis", "Cervical spondylosis",
	"Gastroesophageal reflux disease", "Dyslipidemia",
}

var medicationCatalog = []string{
	"Paracetamol 500mg", "Paracetamol 650mg", "Azithromycin 500mg",
	"Amoxicillin 500mg", "Cetirizine 10mg", "Levocetirizine 5mg",
	"Pantoprazole 40mg", "Omeprazole 20mg", "Domperidone 10mg",
	"Metformin 500mg", "Amlodipine 5mg", "Telmisartan 40mg",
	"Atorvastatin 10mg", "Thyroxine 50mcg", "Ondansetron 4mg",
	"Ibuprofen 400mg", "Diclofenac 50mg", "ORS sachet",
}

var investigationCatalog = []string{
	"Complete blood count", "Fasting blood sugar", "Postprandial blood sugar",
	"HbA1c", "Lipid profile", "Liver function test", "Renal function test",
	"Thyroid profile", "Urine routine", "Dengue NS1 antigen", "Widal test",
	"ECG", "Chest X-ray", "Ultrasound abdomen", "CT brain", "MRI spine",
}

var adviceCatalog = []string{
	"Drink plenty of fluids", "Take adequate rest", "Avoid oily and spicy food",
	"Steam inhalation twice daily", "Light easily digestible diet",
	"Regular exercise 30 minutes daily", "Reduce salt intake",
	"Avoid self-medication", "Review if symptoms worsen",
}

var catalogs = map[string][]string{
	CatalogSymptoms:       symptomCatalog,
	CatalogDiagnoses:      diagnosisCatalog,
	CatalogMedications:    medicationCatalog,
	CatalogInvestigations: investigationCatalog,
	CatalogAdvice:         adviceCatalog,
}

// SearchCatalog returns the entries of the named catalog whose text contains
// the query, matched case-insensitively. An empty query returns the whole
// catalog.
func SearchCatalog(kind, query string) ([]string, error) {
	entries, ok := catalogs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q", kind)
	}
	if query == "" {
		out := make([]string, len(entries))
		copy(out, entries)
		return out, nil
	}

	q := strings.ToLower(query)
	var out []string
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e), q) {
			out = append(out, e)
		}
	}
	return out, nil
}
