package enums

import "fmt"

// AttendanceTab names one of the views of the attendance screen.
type AttendanceTab string

const (
	AttendanceTabSales   AttendanceTab = "sales"
	AttendanceTabOrders  AttendanceTab = "orders"
	AttendanceTabCash    AttendanceTab = "cash"
	AttendanceTabTables  AttendanceTab = "tables"
	AttendanceTabHistory AttendanceTab = "history"
)

// AttendanceTabs lists every tab in display order.
var AttendanceTabs = []AttendanceTab{
	AttendanceTabSales,
	AttendanceTabOrders,
	AttendanceTabCash,
	AttendanceTabTables,
	AttendanceTabHistory,
}

// String implements fmt.Stringer.
func (a AttendanceTab) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttendanceTab.
func (a AttendanceTab) IsValid() bool {
	for _, candidate := range AttendanceTabs {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendanceTab converts raw input into an AttendanceTab.
func ParseAttendanceTab(value string) (AttendanceTab, error) {
	for _, candidate := range AttendanceTabs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance tab %q", value)
}
