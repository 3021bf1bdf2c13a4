package mail

type LeadAlertData struct {
	Name          string
	Email         string
	Phone         string
	PropertyTitle string
	LeadID        string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AlertTo  string
}
