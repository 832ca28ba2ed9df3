package attendance

import "github.com/eliteacai/pdv-backend/pkg/enums"

// Resolution is the attendance screen state for one request.
type Resolution struct {
	StoreID       enums.StoreID       `json:"store_id"`
	OperatorName  string              `json:"operator_name,omitempty"`
	IsAdmin       bool                `json:"is_admin"`
	ActiveTab     enums.AttendanceTab `json:"active_tab"`
	Tabs          []Tab               `json:"tabs"`
	PendingOrders int64               `json:"pending_orders"`
	Warnings      []Warning           `json:"warnings"`
	View          View                `json:"view"`
	DemoMode      bool                `json:"demo_mode"`
}

// Tab is one navigation entry.
type Tab struct {
	Key    enums.AttendanceTab `json:"key"`
	Label  string              `json:"label"`
	Active bool                `json:"active"`
	Badge  int64               `json:"badge,omitempty"`
}

// View describes the mounted screen and the resource it reads from.
type View struct {
	Tab       enums.AttendanceTab `json:"tab"`
	Title     string              `json:"title"`
	Component string              `json:"component"`
	Resource  string              `json:"resource,omitempty"`
}

// Warning is a banner shown above the active view.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
