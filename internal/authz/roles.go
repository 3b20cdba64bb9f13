package authz

import "fmt"

// Role is the closed set of roles. The legacy data compared raw strings
// ("administrador", "director", …); parsing into this enum at the resolver
// boundary keeps typo-class bugs out of the guards.
type Role string

const (
	RoleAdministrador Role = "administrador"
	RoleDirector      Role = "director"
	RoleCoordinador   Role = "coordinador"
	RoleFuncionario   Role = "funcionario"
	RoleConsulta      Role = "consulta"
)

var knownRoles = map[Role]struct{}{
	RoleAdministrador: {},
	RoleDirector:      {},
	RoleCoordinador:   {},
	RoleFuncionario:   {},
	RoleConsulta:      {},
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("rol desconocido: %q", s)
	}
	return r, nil
}
