package models

const (
	RecordParked = "Parked"
	RecordExited = "Exited"
)

// Record is one historical vehicle entry/exit row from the records sheet.
type Record struct {
	ID       int    `json:"id"`
	Plate    string `json:"plate"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
	Location string `json:"location"`
}
