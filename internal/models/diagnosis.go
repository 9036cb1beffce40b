package models

// Insights is the structured narrative returned by the remote
// classifier alongside a prediction. Field names follow the
// classifier's wire schema.
type Insights struct {
	Overview    string   `json:"overview"`
	Symptoms    []string `json:"symptoms"`
	Treatment   []string `json:"treatment"`
	MedicalCare []string `json:"medical_care"`
	Prevention  []string `json:"prevention"`
}

// Diagnosis is the output of one classification. Immutable once
// produced; it is never stored on its own, only snapshotted into a
// progress entry.
type Diagnosis struct {
	DiseaseName string   `json:"disease_name"`
	Confidence  float64  `json:"confidence"`
	Insights    Insights `json:"ai_insights"`
}
