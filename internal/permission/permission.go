// Package permission maps roles to the permission strings they grant.
//
// A Model is immutable once built. Unknown roles and permissions resolve to
// "no permission" so authorization fails closed.
package permission

import (
	"sort"
	"strings"
)

const (
	UserView   = "user:view"
	UserCreate = "user:create"
	UserUpdate = "user:update"
	UserDelete = "user:delete"
	UserManage = "user:manage"

	PestView     = "pest:view"
	PestCreate   = "pest:create"
	PestUpdate   = "pest:update"
	PestDelete   = "pest:delete"
	PestIdentify = "pest:identify"

	TreatmentView    = "treatment:view"
	TreatmentCreate  = "treatment:create"
	TreatmentUpdate  = "treatment:update"
	TreatmentDelete  = "treatment:delete"
	TreatmentApprove = "treatment:approve"
	TreatmentExecute = "treatment:execute"

	PesticideView        = "pesticide:view"
	PesticideCreate      = "pesticide:create"
	PesticideUpdate      = "pesticide:update"
	PesticideDelete      = "pesticide:delete"
	PesticideManageStock = "pesticide:manage_stock"

	EvaluationView   = "evaluation:view"
	EvaluationCreate = "evaluation:create"
	EvaluationUpdate = "evaluation:update"
	EvaluationDelete = "evaluation:delete"

	PredictionView   = "prediction:view"
	PredictionCreate = "prediction:create"
	PredictionUpdate = "prediction:update"
	PredictionDelete = "prediction:delete"
	AlertManage      = "alert:manage"

	ForestView   = "forest:view"
	ForestCreate = "forest:create"
	ForestUpdate = "forest:update"
	ForestDelete = "forest:delete"

	KnowledgeView    = "knowledge:view"
	KnowledgeCreate  = "knowledge:create"
	KnowledgeUpdate  = "knowledge:update"
	KnowledgeDelete  = "knowledge:delete"
	KnowledgeApprove = "knowledge:approve"

	SystemConfig  = "system:config"
	SystemMonitor = "system:monitor"
	SystemBackup  = "system:backup"
	DataExport    = "data:export"
	DataImport    = "data:import"
)

const (
	RoleAdmin    = "ADMIN"
	RoleUser     = "USER"
	RoleExpert   = "EXPERT"
	RoleOperator = "OPERATOR"
)

// Table is the raw role -> permissions input to NewModel.
type Table map[string][]string

// DefaultTable returns the built-in role table. Each call returns a fresh
// value, so callers may extend it before building a Model.
func DefaultTable() Table {
	user := []string{
		PestView, PestIdentify,
		TreatmentView, TreatmentExecute,
		PesticideView,
		EvaluationView, EvaluationCreate,
		PredictionView,
		ForestView,
		KnowledgeView,
	}

	expert := append(append([]string{}, user...),
		PestCreate, PestUpdate,
		TreatmentCreate, TreatmentUpdate,
		EvaluationUpdate,
		PredictionCreate, PredictionUpdate,
		KnowledgeCreate, KnowledgeUpdate,
	)

	operator := append(append([]string{}, user...),
		TreatmentCreate, TreatmentUpdate,
		PesticideUpdate, PesticideManageStock,
		ForestUpdate,
	)

	admin := []string{
		UserView, UserCreate, UserUpdate, UserDelete, UserManage,
		PestView, PestCreate, PestUpdate, PestDelete, PestIdentify,
		TreatmentView, TreatmentCreate, TreatmentUpdate, TreatmentDelete, TreatmentApprove, TreatmentExecute,
		PesticideView, PesticideCreate, PesticideUpdate, PesticideDelete, PesticideManageStock,
		EvaluationView, EvaluationCreate, EvaluationUpdate, EvaluationDelete,
		PredictionView, PredictionCreate, PredictionUpdate, PredictionDelete, AlertManage,
		ForestView, ForestCreate, ForestUpdate, ForestDelete,
		KnowledgeView, KnowledgeCreate, KnowledgeUpdate, KnowledgeDelete, KnowledgeApprove,
		SystemConfig, SystemMonitor, SystemBackup, DataExport, DataImport,
	}

	return Table{
		RoleAdmin:    admin,
		RoleUser:     user,
		RoleExpert:   expert,
		RoleOperator: operator,
	}
}

type set map[string]struct{}

type Model struct {
	roles map[string]set
	all   set
}

// NewModel builds an immutable Model from table. The table is copied.
func NewModel(table Table) Model {
	m := Model{
		roles: make(map[string]set, len(table)),
		all:   make(set),
	}
	for role, perms := range table {
		s := make(set, len(perms))
		for _, p := range perms {
			s[p] = struct{}{}
			m.all[p] = struct{}{}
		}
		m.roles[role] = s
	}
	return m
}

// PermissionsForRole returns the sorted permissions of role, or an empty
// slice when the role is unknown.
func (m Model) PermissionsForRole(role string) []string {
	s, ok := m.roles[role]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m Model) RoleHasPermission(role, permission string) bool {
	_, ok := m.roles[role][permission]
	return ok
}

func (m Model) IsValidRole(role string) bool {
	_, ok := m.roles[role]
	return ok
}

// IsValidPermission reports whether any role grants permission.
func (m Model) IsValidPermission(permission string) bool {
	_, ok := m.all[permission]
	return ok
}

func (m Model) Roles() []string {
	out := make([]string, 0, len(m.roles))
	for r := range m.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// HasAny reports whether role grants at least one of perms. No perms means false.
func (m Model) HasAny(role string, perms ...string) bool {
	for _, p := range perms {
		if m.RoleHasPermission(role, p) {
			return true
		}
	}
	return false
}

// ActionsFor returns the sorted actions role may perform on resource,
// e.g. ["identify", "view"] for ("USER", "pest").
func (m Model) ActionsFor(role, resource string) []string {
	prefix := resource + ":"
	out := []string{}
	for p := range m.roles[role] {
		if strings.HasPrefix(p, prefix) {
			out = append(out, strings.TrimPrefix(p, prefix))
		}
	}
	sort.Strings(out)
	return out
}

func Permission(resource, action string) string {
	return resource + ":" + action
}
