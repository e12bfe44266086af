package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	Username     string    `json:"username" db:"username"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"` // Oculta o hash da senha no JSON de resposta
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Role é o papel do usuário no armazém.
type Role string

const (
	RoleManager  Role = "gerente"
	RoleOperator Role = "operador"
)

// Valid informa se o papel pertence ao conjunto fechado.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permission é uma ação protegida da aplicação.
type Permission string

const (
	PermViewWarehouse      Permission = "visualizar_armazem"
	PermAreaDetails        Permission = "detalhes_area"
	PermRegisterSale       Permission = "registrar_venda"
	PermManageAreas        Permission = "gerenciar_areas"
	PermManageCatalog      Permission = "gerenciar_catalogo_produtos"
	PermManageAreaProducts Permission = "gerenciar_produtos_em_areas"
	PermReports            Permission = "relatorios"
	PermManageUsers        Permission = "gerenciar_usuarios"
)

var rolePermissions = map[Role]map[Permission]bool{
	RoleManager: {
		PermViewWarehouse:      true,
		PermAreaDetails:        true,
		PermRegisterSale:       true,
		PermManageAreas:        true,
		PermManageCatalog:      true,
		PermManageAreaProducts: true,
		PermReports:            true,
		PermManageUsers:        true,
	},
	RoleOperator: {
		PermViewWarehouse: true,
		PermAreaDetails:   true,
		PermRegisterSale:  true,
	},
}

// HasPermission consulta a tabela estática papel → permissões.
// Papel ou permissão desconhecidos resultam em false.
func HasPermission(role Role, perm Permission) bool {
	return rolePermissions[role][perm]
}

// UserRegistration representa o payload de entrada para o cadastro de usuário.
type UserRegistration struct {
	Username string `json:"username" example:"maria.santos"`
	Name     string `json:"name" example:"Maria Santos"`
	Password string `json:"password" example:"operador456"`
	Role     Role   `json:"role" example:"operador"`
}

// LoginRequest é o payload de autenticação.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"admin123"`
}

// LoginResponse devolve o token de sessão.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// SessionInfo são os dados de sessão propagados no contexto da requisição.
type SessionInfo struct {
	SessionID string `json:"-"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}
