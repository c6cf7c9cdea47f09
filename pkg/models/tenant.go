package models

// TenantConfig is the per-tenant automation policy. It is loaded once per
// workflow invocation and treated as immutable by every stage.
type TenantConfig struct {
	TenantID            string  `json:"tenant_id"`
	Timezone            string  `json:"timezone"`
	WorkingHoursStart   int     `json:"working_hours_start"` // hour, 0-23
	WorkingHoursEnd     int     `json:"working_hours_end"`
	WorkingDays         []int   `json:"working_days"` // 0=Monday
	Tone                string  `json:"tone"`
	AutoSendEnabled     bool    `json:"auto_send_enabled"`
	EscalationThreshold float64 `json:"escalation_threshold"` // confidence below this escalates
}

// DefaultTenantConfig returns the policy applied when a tenant has not
// configured one: UK business hours, drafts only, escalate below 0.7.
func DefaultTenantConfig(tenantID string) TenantConfig {
	return TenantConfig{
		TenantID:            tenantID,
		Timezone:            "Europe/London",
		WorkingHoursStart:   9,
		WorkingHoursEnd:     17,
		WorkingDays:         []int{0, 1, 2, 3, 4},
		Tone:                "professional",
		AutoSendEnabled:     false,
		EscalationThreshold: 0.7,
	}
}

// WorksOn reports whether weekday (0=Monday) is a working day for the tenant.
func (c TenantConfig) WorksOn(weekday int) bool {
	for _, d := range c.WorkingDays {
		if d == weekday {
			return true
		}
	}
	return false
}
