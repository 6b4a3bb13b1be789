package refdata

import "github.com/rs/zerolog"

// defaultDataset returns the built-in demonstration tables. These cover the
// common acute presentations well enough to exercise the whole pipeline but
// are not a certified grouping release; production deployments ship their
// own dataset via REF_DATA_PATH.
func defaultDataset() Dataset {
	return Dataset{
		Version: "demo-2024.2",

		Synonyms: []SynonymEntry{
			// Cardiovascular
			{Code: "I21.9", Description: "Acute myocardial infarction, unspecified", Confidence: 0.99, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"myocardial infarction", "heart attack", "mi"}},
			{Code: "I21.3", Description: "ST elevation myocardial infarction", Confidence: 0.99, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"stemi"}},
			{Code: "I50.9", Description: "Heart failure, unspecified", Confidence: 0.92, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"heart failure", "congestive heart failure", "chf"}},
			{Code: "I48.91", Description: "Unspecified atrial fibrillation", Confidence: 0.95, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"atrial fibrillation", "afib"}},
			{Code: "I10", Description: "Essential (primary) hypertension", Confidence: 0.88, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"hypertension", "high blood pressure"}},
			{Code: "I63.9", Description: "Cerebral infarction, unspecified", Confidence: 0.96, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"stroke", "cva", "cerebral infarction"}},
			{Code: "I26.99", Description: "Other pulmonary embolism without acute cor pulmonale", Confidence: 0.96, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"pulmonary embolism"}},

			// Respiratory
			{Code: "J18.9", Description: "Pneumonia, unspecified organism", Confidence: 0.85, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"pneumonia"}},
			{Code: "J44.9", Description: "Chronic obstructive pulmonary disease, unspecified", Confidence: 0.91, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"copd", "chronic obstructive pulmonary disease"}},
			{Code: "J45.909", Description: "Unspecified asthma, uncomplicated", Confidence: 0.87, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"asthma"}},
			{Code: "J96.90", Description: "Respiratory failure, unspecified", Confidence: 0.94, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"respiratory failure"}},

			// Infectious
			{Code: "A41.9", Description: "Sepsis, unspecified organism", Confidence: 0.96, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"sepsis", "septicemia"}},
			{Code: "R65.21", Description: "Severe sepsis with septic shock", Confidence: 0.98, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"septic shock"}},
			{Code: "N39.0", Description: "Urinary tract infection, site not specified", Confidence: 0.82, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"urinary tract infection", "uti"}},
			{Code: "U07.1", Description: "COVID-19", Confidence: 0.97, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"covid-19", "covid"}},

			// Digestive
			{Code: "K37", Description: "Unspecified appendicitis", Confidence: 0.95, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"appendicitis"}},
			{Code: "K81.9", Description: "Cholecystitis, unspecified", Confidence: 0.91, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"cholecystitis"}},
			{Code: "K85.90", Description: "Acute pancreatitis, unspecified", Confidence: 0.93, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"pancreatitis"}},
			{Code: "K92.2", Description: "Gastrointestinal hemorrhage, unspecified", Confidence: 0.90, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"gi bleed", "gastrointestinal bleeding"}},

			// Endocrine / renal
			{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications", Confidence: 0.86, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"diabetes", "type 2 diabetes"}},
			{Code: "E10.10", Description: "Type 1 diabetes mellitus with ketoacidosis without coma", Confidence: 0.98, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"diabetic ketoacidosis", "dka"}},
			{Code: "N17.9", Description: "Acute kidney failure, unspecified", Confidence: 0.93, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"acute kidney injury", "aki"}},
			{Code: "N18.9", Description: "Chronic kidney disease, unspecified", Confidence: 0.88, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"chronic kidney disease", "ckd"}},

			// Trauma / neoplasm / mental health
			{Code: "S72.009A", Description: "Fracture of unspecified part of neck of femur, initial encounter", Confidence: 0.92, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"hip fracture"}},
			{Code: "S82.90XA", Description: "Unspecified fracture of lower leg, initial encounter", Confidence: 0.75, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"fracture"}},
			{Code: "S06.9X9A", Description: "Unspecified intracranial injury", Confidence: 0.94, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"traumatic brain injury", "tbi"}},
			{Code: "C34.90", Description: "Malignant neoplasm of unspecified part of bronchus or lung", Confidence: 0.95, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"lung cancer"}},
			{Code: "F32.9", Description: "Major depressive disorder, single episode, unspecified", Confidence: 0.83, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"depression"}},
			{Code: "F03.90", Description: "Unspecified dementia without behavioral disturbance", Confidence: 0.88, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"dementia"}},

			// Symptom-level codes keep low-information notes out of the
			// high-confidence automation phases.
			{Code: "R05.9", Description: "Cough, unspecified", Confidence: 0.62, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"cough"}},
			{Code: "R50.9", Description: "Fever, unspecified", Confidence: 0.58, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"fever", "pyrexia"}},
			{Code: "R07.9", Description: "Chest pain, unspecified", Confidence: 0.64, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"chest pain"}},
			{Code: "R10.9", Description: "Unspecified abdominal pain", Confidence: 0.60, CodeType: CodeTypeDiagnosis,
				Synonyms: []string{"abdominal pain"}},

			// Procedures
			{Code: "44970", Description: "Laparoscopic appendectomy", Confidence: 0.92, CodeType: CodeTypeProcedure,
				Synonyms: []string{"appendectomy"}},
			{Code: "47562", Description: "Laparoscopic cholecystectomy", Confidence: 0.93, CodeType: CodeTypeProcedure,
				Synonyms: []string{"cholecystectomy"}},
			{Code: "92920", Description: "Percutaneous transluminal coronary angioplasty", Confidence: 0.96, CodeType: CodeTypeProcedure,
				Synonyms: []string{"coronary angioplasty", "pci"}},
			{Code: "31500", Description: "Endotracheal intubation", Confidence: 0.94, CodeType: CodeTypeProcedure,
				Synonyms: []string{"intubation"}},
			{Code: "90935", Description: "Hemodialysis procedure", Confidence: 0.96, CodeType: CodeTypeProcedure,
				Synonyms: []string{"dialysis", "hemodialysis"}},
		},

		FallbackCode: SynonymEntry{
			Code:        "Z00.00",
			Description: "Encounter for general examination without abnormal findings",
			Confidence:  0.50,
			CodeType:    CodeTypeDiagnosis,
		},

		DiagnosisGroups: map[string]BaseGroup{
			"I21": {Code: "ADRG-190", Description: "Acute myocardial infarction", MDC: "05", Weights: [4]float64{1.12, 1.48, 2.05, 3.32}, BaseLOS: 4.0},
			"I50": {Code: "ADRG-194", Description: "Heart failure", MDC: "05", Weights: [4]float64{0.84, 1.10, 1.62, 2.51}, BaseLOS: 4.5},
			"I63": {Code: "ADRG-045", Description: "Ischemic stroke", MDC: "01", Weights: [4]float64{1.05, 1.41, 2.10, 3.45}, BaseLOS: 5.0},
			"I26": {Code: "ADRG-134", Description: "Pulmonary embolism", MDC: "04", Weights: [4]float64{0.95, 1.25, 1.84, 2.90}, BaseLOS: 4.0},
			"J18": {Code: "ADRG-139", Description: "Simple pneumonia", MDC: "04", Weights: [4]float64{0.71, 0.96, 1.43, 2.30}, BaseLOS: 3.5},
			"J44": {Code: "ADRG-140", Description: "Chronic obstructive pulmonary disease", MDC: "04", Weights: [4]float64{0.68, 0.92, 1.36, 2.12}, BaseLOS: 3.0},
			"J96": {Code: "ADRG-133", Description: "Respiratory failure", MDC: "04", Weights: [4]float64{1.21, 1.63, 2.44, 3.95}, BaseLOS: 5.5},
			"A41": {Code: "ADRG-720", Description: "Septicemia and disseminated infections", MDC: "18", Weights: [4]float64{1.30, 1.78, 2.71, 4.42}, BaseLOS: 6.0},
			"R65": {Code: "ADRG-720", Description: "Septicemia and disseminated infections", MDC: "18", Weights: [4]float64{1.30, 1.78, 2.71, 4.42}, BaseLOS: 6.0},
			"K37": {Code: "ADRG-225", Description: "Appendectomy conditions", MDC: "06", Weights: [4]float64{0.80, 1.02, 1.46, 2.20}, BaseLOS: 2.0},
			"K85": {Code: "ADRG-282", Description: "Disorders of pancreas", MDC: "07", Weights: [4]float64{0.78, 1.04, 1.55, 2.46}, BaseLOS: 3.5},
			"K92": {Code: "ADRG-241", Description: "Gastrointestinal hemorrhage", MDC: "06", Weights: [4]float64{0.82, 1.08, 1.60, 2.55}, BaseLOS: 3.0},
			"N17": {Code: "ADRG-460", Description: "Renal failure", MDC: "11", Weights: [4]float64{0.90, 1.22, 1.83, 2.96}, BaseLOS: 4.0},
			"E10": {Code: "ADRG-420", Description: "Diabetes", MDC: "10", Weights: [4]float64{0.76, 1.01, 1.50, 2.38}, BaseLOS: 3.0},
			"E11": {Code: "ADRG-420", Description: "Diabetes", MDC: "10", Weights: [4]float64{0.76, 1.01, 1.50, 2.38}, BaseLOS: 3.0},
			"S72": {Code: "ADRG-301", Description: "Hip and femur procedures", MDC: "08", Weights: [4]float64{1.18, 1.52, 2.16, 3.28}, BaseLOS: 5.0},
			"S06": {Code: "ADRG-055", Description: "Head trauma", MDC: "01", Weights: [4]float64{1.10, 1.49, 2.24, 3.66}, BaseLOS: 4.5},
			"U07": {Code: "ADRG-137", Description: "Major respiratory infections", MDC: "04", Weights: [4]float64{0.88, 1.18, 1.77, 2.86}, BaseLOS: 4.0},
		},
		FallbackGroup: BaseGroup{
			Code: "ADRG-951", Description: "Other factors influencing health status", MDC: "23",
			Weights: [4]float64{0.55, 0.72, 1.05, 1.60}, BaseLOS: 3.0,
		},

		MajorComplicationPrefixes: []string{
			"I21", "I26", "I50", "I63", "A41", "R65", "J96", "N17", "N18",
			"E10", "S06", "C34", "C50", "C18", "C80", "U07",
		},
		LifeThreateningPrefixes: []string{
			"I21", "I26", "I63", "A41", "R65", "J96", "N17", "S06", "C80",
		},

		EmergencyGroup:      AmbulatoryGroup{Code: "EAPG-450", Description: "Emergency department visit", Weight: 2.10},
		PreventiveGroup:     AmbulatoryGroup{Code: "EAPG-571", Description: "Preventive care visit", Weight: 0.80},
		MinorProcedureGroup: AmbulatoryGroup{Code: "EAPG-228", Description: "Minor ambulatory procedure", Weight: 1.50},
		OfficeVisitGroup:    AmbulatoryGroup{Code: "EAPG-561", Description: "Office or clinic visit", Weight: 1.00},

		PreventivePrefixes: []string{"Z00", "Z01", "Z11", "Z12", "Z13", "Z23"},

		ProcedureBands: []CodeRange{
			{Low: 10040, High: 69990},
			{Low: 90281, High: 99607},
		},
		SignificantProcedureRanges: []CodeRange{
			{Low: 30000, High: 49999},
			{Low: 92900, High: 93999},
		},

		AncillaryIncrement: 0.25,
	}
}

// Default returns a Store over the built-in tables with logging disabled.
// Intended for tests and standalone mode.
func Default() *Store {
	s, err := New(defaultDataset(), zerolog.Nop())
	if err != nil {
		panic(err)
	}
	return s
}
