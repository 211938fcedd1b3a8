package dto

// DashboardSummary aggregates the landing page counters for one clinic.
type DashboardSummary struct {
	AppointmentsToday    int     `json:"appointments_today"`
	AppointmentsWeek     int     `json:"appointments_week"`
	CustomersTotal       int     `json:"customers_total"`
	MonthIncome          float64 `json:"month_income"`
	MonthExpense         float64 `json:"month_expense"`
	LowStockProducts     int     `json:"low_stock_products"`
	BirthdaysThisMonth   int     `json:"birthdays_this_month"`
	ActiveCampaigns      int     `json:"active_campaigns"`
	PendingNotifications int     `json:"pending_notifications"`
}
