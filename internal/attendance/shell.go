package attendance

import (
	"context"
	"fmt"

	"github.com/eliteacai/pdv-backend/pkg/auth"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

const (
	WarningDemoMode            = "demo_mode"
	WarningRegisterClosed      = "cash_register_closed"
	WarningPreviousDayRegister = "previous_day_register_open"
)

type pendingCounter interface {
	PendingCount(ctx context.Context, store enums.StoreID) (int64, error)
}

type registerStatus interface {
	IsOpen(ctx context.Context, store enums.StoreID) (bool, error)
	OpenSincePreviousDay(ctx context.Context, store enums.StoreID) (bool, error)
}

type tabSpec struct {
	label      string
	permission enums.Permission
	component  string
	resource   string
}

var tabSpecs = map[enums.AttendanceTab]tabSpec{
	enums.AttendanceTabSales:   {label: "Vendas", permission: enums.PermissionViewSales, component: "sales_terminal"},
	enums.AttendanceTabOrders:  {label: "Pedidos", permission: enums.PermissionViewOrders, component: "orders_panel", resource: "orders"},
	enums.AttendanceTabCash:    {label: "Caixas", permission: enums.PermissionViewCashRegister, component: "cash_register", resource: "cash-register"},
	enums.AttendanceTabTables:  {label: "Vendas Mesas", permission: enums.PermissionViewSales, component: "table_sales", resource: "tables"},
	enums.AttendanceTabHistory: {label: "Histórico de Vendas", component: "sales_history", resource: "sales"},
}

// Shell decides which attendance views an operator can reach.
type Shell struct {
	orders   pendingCounter
	register registerStatus
	demo     bool
	logg     *logger.Logger
}

// NewShell builds the attendance shell. In demo mode register warnings are
// suppressed and only the demo warning is reported.
func NewShell(orders pendingCounter, register registerStatus, demo bool, logg *logger.Logger) (*Shell, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders counter required")
	}
	if register == nil {
		return nil, fmt.Errorf("register status required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Shell{orders: orders, register: register, demo: demo, logg: logg}, nil
}

// VisibleTabs lists the tabs the operator may open, in display order.
func VisibleTabs(operator *auth.Operator) []enums.AttendanceTab {
	out := make([]enums.AttendanceTab, 0, len(enums.AttendanceTabs))
	for _, tab := range enums.AttendanceTabs {
		if CanView(operator, tab) {
			out = append(out, tab)
		}
	}
	return out
}

// CanView reports whether the operator may open tab. Admins see everything and
// the history tab is never gated.
func CanView(operator *auth.Operator, tab enums.AttendanceTab) bool {
	spec, ok := tabSpecs[tab]
	if !ok {
		return false
	}
	if spec.permission == "" {
		return true
	}
	return operator.Has(spec.permission)
}

// Resolve picks the active tab for the request. An empty requested tab selects
// the first visible one.
func (s *Shell) Resolve(ctx context.Context, operator *auth.Operator, store enums.StoreID, requested string) (*Resolution, error) {
	if !store.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown store %d", int(store))
	}

	visible := VisibleTabs(operator)
	active := visible[0]
	if requested != "" {
		tab, err := enums.ParseAttendanceTab(requested)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown attendance tab").
				WithDetails(map[string]string{"tab": "must be one of sales, orders, cash, tables, history"})
		}
		if !CanView(operator, tab) {
			return nil, pkgerrors.Newf(pkgerrors.CodeForbidden, "tab %s is not available to this operator", tab)
		}
		active = tab
	}

	ctx = s.logg.WithStoreID(ctx, store)
	res := &Resolution{
		StoreID:   store,
		IsAdmin:   operator.IsAdmin(),
		ActiveTab: active,
		DemoMode:  s.demo,
		Warnings:  []Warning{},
	}
	if name := operator.DisplayName(); name != "" {
		res.OperatorName = name
	}

	if CanView(operator, enums.AttendanceTabOrders) {
		count, err := s.orders.PendingCount(ctx, store)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("pending orders badge unavailable: %v", err))
		} else {
			res.PendingOrders = count
		}
	}

	for _, tab := range visible {
		spec := tabSpecs[tab]
		entry := Tab{Key: tab, Label: spec.label, Active: tab == active}
		if tab == enums.AttendanceTabOrders {
			entry.Badge = res.PendingOrders
		}
		res.Tabs = append(res.Tabs, entry)
	}

	spec := tabSpecs[active]
	res.View = View{Tab: active, Title: spec.label, Component: spec.component}
	if spec.resource != "" {
		res.View.Resource = fmt.Sprintf("/api/v1/stores/%d/%s", int(store), spec.resource)
	}

	res.Warnings = s.warnings(ctx, store, active)
	return res, nil
}

func (s *Shell) warnings(ctx context.Context, store enums.StoreID, active enums.AttendanceTab) []Warning {
	if s.demo {
		return []Warning{{
			Code:    WarningDemoMode,
			Message: "Banco de dados não configurado. Os dados exibidos são de demonstração e não serão salvos.",
		}}
	}

	warnings := []Warning{}
	stale, err := s.register.OpenSincePreviousDay(ctx, store)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("previous day register check failed: %v", err))
	} else if stale {
		warnings = append(warnings, Warning{
			Code:    WarningPreviousDayRegister,
			Message: "Há um caixa aberto desde um dia anterior que não foi fechado.",
		})
	}

	if active != enums.AttendanceTabSales && active != enums.AttendanceTabOrders {
		return warnings
	}
	open, err := s.register.IsOpen(ctx, store)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("register status check failed: %v", err))
		return warnings
	}
	if !open {
		action := "realizar vendas"
		if active == enums.AttendanceTabOrders {
			action = "visualizar pedidos"
		}
		warnings = append(warnings, Warning{
			Code:    WarningRegisterClosed,
			Message: fmt.Sprintf("Não é possível %s sem um caixa aberto.", action),
		})
	}
	return warnings
}
