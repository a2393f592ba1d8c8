package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

type ReminderEmailData struct {
	LeadName   string
	Platform   string
	ProfileURL string
	DueDate    string
	LastDmText string
}
