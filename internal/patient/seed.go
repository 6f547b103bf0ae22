package patient

// SeedPatients is the initial ward census loaded into an empty store.
var SeedPatients = []Patient{
	{ID: "P001", Name: "John Smith", Age: 45, Condition: "Diabetes", LastVisit: "2024-01-15", Floor: 1, RespiratoryRate: 18, Airflow: 85},
	{ID: "P002", Name: "Sarah Johnson", Age: 32, Condition: "Hypertension", LastVisit: "2024-01-10", Floor: 2, RespiratoryRate: 25, Airflow: 65},
	{ID: "P003", Name: "Mike Davis", Age: 58, Condition: "Heart Disease", LastVisit: "2024-01-12", Floor: 3, RespiratoryRate: 14, Airflow: 100},
	{ID: "P004", Name: "Emily Brown", Age: 28, Condition: "Asthma", LastVisit: "2024-01-08", Floor: 4, RespiratoryRate: 30, Airflow: 45},
	{ID: "P005", Name: "Robert Wilson", Age: 67, Condition: "Arthritis", LastVisit: "2024-01-05", Floor: 5, RespiratoryRate: 23, Airflow: 85},
	{ID: "P006", Name: "Russell Wilson", Age: 33, Condition: "Chicken Pox", LastVisit: "2024-01-05", Floor: 1, RespiratoryRate: 17, Airflow: 94},
	{ID: "P007", Name: "Larry Bird", Age: 72, Condition: "Respiratory Problems", LastVisit: "2024-01-05", Floor: 2, RespiratoryRate: 13, Airflow: 85},
	{ID: "P008", Name: "Kevin Durant", Age: 83, Condition: "General Checkup", LastVisit: "2024-01-05", Floor: 3, RespiratoryRate: 22, Airflow: 80},
}

// SamplePatient is the record added by `patientctl add-sample`.
var SamplePatient = Patient{
	ID: "P999", Name: "Test Patient", Age: 30, Condition: "Test Condition",
	LastVisit: "2024-01-20", Floor: 1, RespiratoryRate: 20, Airflow: 80,
}
