package domain

const GuestEmail = "Guest"

// Activity action tags.
const (
	ActionLogin       = "Login"
	ActionLogout      = "Logout"
	ActionUserCreated = "User Created"
	ActionUserDeleted = "User Deleted"
	ActionDownloadCSV = "Download CSV"
)

type ActivityEntry struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"user_id"`
	Email     string `json:"email"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}
