package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
				{Object: "/orders/admin/:id/allocation-suggestions", Action: "GET"},
			},
		},
		{
			Role:     "catalog",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
			},
		},
		{
			Role:     "inventory_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/nurseries", Action: "*"},
				{Object: "/admin/nurseries/:id", Action: "*"},
				{Object: "/admin/nurseries/:id/inventory/:product_id", Action: "PUT"},
			},
		},
		{
			Role:     "fulfillment",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id", Action: "PATCH"},
				{Object: "/orders/admin/:id/allocate", Action: "POST"},
				{Object: "/orders/admin/:id/confirm", Action: "POST"},
				{Object: "/admin/fulfillments/:id/delivery-contact", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if err := s.link(role, parentRole); err != nil {
				return fmt.Errorf("link %s to %s: %w", role, parentRole, err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.allow(role, policy); err != nil {
				return err
			}
		}
	}
	return nil
}
