package api

import (
	"context"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/authz"
	"github.com/forgewell/appforge-backend/internal/config"
	"github.com/forgewell/appforge-backend/internal/dispatch"
	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/internal/service/entity"
	"github.com/forgewell/appforge-backend/internal/service/user"
)

// RegisterOperations wires every operation into the registry together with
// its authorization descriptor and context-value injection. The declarations
// here are the single source of truth for which resource each operation is
// checked against and where in the argument tree the resource id lives.
func RegisterOperations(reg *dispatch.Registry, entities *entity.Service, users *user.Service, cfg config.APIConfig) {
	p := &presenter{entities: entities}

	reg.Register(dispatch.Operation{
		Name:      "entity",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionView},
		Handler:   getEntityHandler(entities, p, cfg),
	})

	reg.Register(dispatch.Operation{
		Name:      "entities",
		Authorize: &authz.Descriptor{Kind: authz.ResourceApp, Path: "where.app.id", Action: authz.ActionView},
		Handler:   listEntitiesHandler(entities, p, cfg),
	})

	reg.Register(dispatch.Operation{
		Name:      "createEntity",
		Authorize: &authz.Descriptor{Kind: authz.ResourceApp, Path: "data.app.connect.id", Action: authz.ActionEdit},
		Handler:   createEntityHandler(entities, p),
	})

	reg.Register(dispatch.Operation{
		Name:      "updateEntity",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionEdit},
		Handler:   updateEntityHandler(entities, p),
	})

	reg.Register(dispatch.Operation{
		Name:      "deleteEntity",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionDelete},
		Handler:   deleteEntityHandler(entities, p),
	})

	reg.Register(dispatch.Operation{
		Name:      "lockEntity",
		Inject:    &authz.Injection{Value: authz.InjectCallerID, Path: "data.lockedByUser.connect.id"},
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionEdit},
		Handler:   lockEntityHandler(entities, p),
	})

	reg.Register(dispatch.Operation{
		Name:      "releaseEntityLock",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionEdit},
		Handler:   releaseEntityLockHandler(entities, p),
	})

	reg.Register(dispatch.Operation{
		Name:      "createEntityField",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "data.entity.connect.id", Action: authz.ActionEdit},
		Handler:   createFieldHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "createEntityFieldByDisplayName",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "data.entity.connect.id", Action: authz.ActionEdit},
		Handler:   createFieldByDisplayNameHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "updateEntityField",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntityField, Path: "where.id", Action: authz.ActionEdit},
		Handler:   updateFieldHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "deleteEntityField",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntityField, Path: "where.id", Action: authz.ActionEdit},
		Handler:   deleteFieldHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "createEntityVersion",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "data.entity.connect.id", Action: authz.ActionEdit},
		Handler:   createVersionHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "updateEntityPermission",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.id", Action: authz.ActionEdit},
		Handler:   updatePermissionHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "updateEntityPermissionRoles",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "data.entity.connect.id", Action: authz.ActionEdit},
		Handler:   updatePermissionRolesHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "addEntityPermissionField",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "data.entity.connect.id", Action: authz.ActionEdit},
		Handler:   addPermissionFieldHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "deleteEntityPermissionField",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntity, Path: "where.entityId", Action: authz.ActionEdit},
		Handler:   deletePermissionFieldHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:      "updateEntityPermissionFieldRoles",
		Authorize: &authz.Descriptor{Kind: authz.ResourceEntityPermissionField, Path: "data.permissionField.connect.id", Action: authz.ActionEdit},
		Handler:   updatePermissionFieldRolesHandler(entities),
	})

	reg.Register(dispatch.Operation{
		Name:    "findUser",
		Handler: findUserHandler(users),
	})
}

// ---------------------------------------------------------------------------
// Entity operations
// ---------------------------------------------------------------------------

func getEntityHandler(svc *entity.Service, p *presenter, cfg config.APIConfig) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		e, err := svc.Get(ctx, entityID)
		if err != nil || e == nil {
			return nil, err
		}

		opts := entityOptions{}
		if hasArg(args, "versions") {
			filter, err := versionFilterArg(args, cfg)
			if err != nil {
				return nil, err
			}
			opts.includeVersions = true
			opts.versionFilter = filter
		}

		return p.entity(ctx, e, opts)
	}
}

func listEntitiesHandler(svc *entity.Service, p *presenter, cfg config.APIConfig) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		appID, err := requiredID(args, "where.app.id")
		if err != nil {
			return nil, err
		}

		filter := domain.EntityFilter{AppID: &appID, Limit: cfg.ListDefaultSize}

		name, err := optionalString(args, "where.name.contains")
		if err != nil {
			return nil, err
		}
		filter.Name = name

		if take, err := optionalInt(args, "take"); err != nil {
			return nil, err
		} else if take != nil {
			filter.Limit = min(*take, cfg.ListMaxSize)
		}
		if skip, err := optionalInt(args, "skip"); err != nil {
			return nil, err
		} else if skip != nil {
			filter.Offset = *skip
		}

		entities, err := svc.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return p.entityList(ctx, entities)
	}
}

func createEntityHandler(svc *entity.Service, p *presenter) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		appID, err := requiredID(args, "data.app.connect.id")
		if err != nil {
			return nil, err
		}

		input := entity.CreateEntityInput{AppID: appID}
		if input.Name, err = requiredString(args, "data.name"); err != nil {
			return nil, err
		}
		if input.DisplayName, err = requiredString(args, "data.displayName"); err != nil {
			return nil, err
		}
		if input.PluralDisplayName, err = requiredString(args, "data.pluralDisplayName"); err != nil {
			return nil, err
		}
		if input.Description, err = optionalString(args, "data.description"); err != nil {
			return nil, err
		}

		created, err := svc.Create(ctx, input)
		if err != nil {
			return nil, err
		}
		return p.entity(ctx, created, entityOptions{})
	}
}

func updateEntityHandler(svc *entity.Service, p *presenter) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		input := entity.UpdateEntityInput{EntityID: entityID}
		if input.Params.Name, err = optionalString(args, "data.name"); err != nil {
			return nil, err
		}
		if input.Params.DisplayName, err = optionalString(args, "data.displayName"); err != nil {
			return nil, err
		}
		if input.Params.PluralDisplayName, err = optionalString(args, "data.pluralDisplayName"); err != nil {
			return nil, err
		}
		if input.Params.Description, err = optionalString(args, "data.description"); err != nil {
			return nil, err
		}

		updated, err := svc.Update(ctx, input)
		if err != nil {
			return nil, err
		}
		return p.entity(ctx, updated, entityOptions{})
	}
}

func deleteEntityHandler(svc *entity.Service, p *presenter) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		deleted, err := svc.Delete(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return p.entity(ctx, deleted, entityOptions{})
	}
}

func lockEntityHandler(svc *entity.Service, p *presenter) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}
		// Written by the dispatcher's caller-id injection before this
		// handler runs.
		holderID, err := requiredID(args, "data.lockedByUser.connect.id")
		if err != nil {
			return nil, err
		}

		locked, err := svc.AcquireLock(ctx, entityID, holderID)
		if err != nil {
			return nil, err
		}
		return p.entity(ctx, locked, entityOptions{})
	}
}

func releaseEntityLockHandler(svc *entity.Service, p *presenter) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		released, err := svc.ReleaseLock(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return p.entity(ctx, released, entityOptions{})
	}
}

// ---------------------------------------------------------------------------
// Field operations
// ---------------------------------------------------------------------------

func createFieldHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "data.entity.connect.id")
		if err != nil {
			return nil, err
		}

		input := entity.CreateFieldInput{EntityID: entityID}
		if input.Name, err = requiredString(args, "data.name"); err != nil {
			return nil, err
		}
		if input.DisplayName, err = requiredString(args, "data.displayName"); err != nil {
			return nil, err
		}
		dataType, err := requiredString(args, "data.dataType")
		if err != nil {
			return nil, err
		}
		input.DataType = domain.DataType(dataType)

		if input.Properties, err = optionalObject(args, "data.properties"); err != nil {
			return nil, err
		}
		if required, err := optionalBool(args, "data.required"); err != nil {
			return nil, err
		} else if required != nil {
			input.Required = *required
		}
		if searchable, err := optionalBool(args, "data.searchable"); err != nil {
			return nil, err
		} else if searchable != nil {
			input.Searchable = *searchable
		}
		if input.Description, err = optionalString(args, "data.description"); err != nil {
			return nil, err
		}
		if input.RelatedFieldName, err = optionalString(args, "relatedFieldName"); err != nil {
			return nil, err
		}
		if input.RelatedFieldDisplayName, err = optionalString(args, "relatedFieldDisplayName"); err != nil {
			return nil, err
		}

		created, err := svc.CreateField(ctx, input)
		if err != nil {
			return nil, err
		}
		return presentField(created), nil
	}
}

func createFieldByDisplayNameHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "data.entity.connect.id")
		if err != nil {
			return nil, err
		}

		displayName, err := requiredString(args, "data.displayName")
		if err != nil {
			return nil, err
		}

		created, err := svc.CreateFieldByDisplayName(ctx, entity.CreateFieldByDisplayNameInput{
			EntityID:    entityID,
			DisplayName: displayName,
		})
		if err != nil {
			return nil, err
		}
		return presentField(created), nil
	}
}

func updateFieldHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		fieldID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		input := entity.UpdateFieldInput{FieldID: fieldID}
		if input.Params.Name, err = optionalString(args, "data.name"); err != nil {
			return nil, err
		}
		if input.Params.DisplayName, err = optionalString(args, "data.displayName"); err != nil {
			return nil, err
		}
		if dataType, err := optionalString(args, "data.dataType"); err != nil {
			return nil, err
		} else if dataType != nil {
			dt := domain.DataType(*dataType)
			input.Params.DataType = &dt
		}
		if input.Params.Properties, err = optionalObject(args, "data.properties"); err != nil {
			return nil, err
		}
		if input.Params.Required, err = optionalBool(args, "data.required"); err != nil {
			return nil, err
		}
		if input.Params.Searchable, err = optionalBool(args, "data.searchable"); err != nil {
			return nil, err
		}
		if input.Params.Description, err = optionalString(args, "data.description"); err != nil {
			return nil, err
		}
		if input.Params.Position, err = optionalInt(args, "data.position"); err != nil {
			return nil, err
		}
		if input.RelatedFieldName, err = optionalString(args, "relatedFieldName"); err != nil {
			return nil, err
		}
		if input.RelatedFieldDisplayName, err = optionalString(args, "relatedFieldDisplayName"); err != nil {
			return nil, err
		}

		updated, err := svc.UpdateField(ctx, input)
		if err != nil {
			return nil, err
		}
		return presentField(updated), nil
	}
}

func deleteFieldHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		fieldID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		deleted, err := svc.DeleteField(ctx, fieldID)
		if err != nil {
			return nil, err
		}
		return presentField(deleted), nil
	}
}

func createVersionHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "data.entity.connect.id")
		if err != nil {
			return nil, err
		}

		message, err := optionalString(args, "data.commitMessage")
		if err != nil {
			return nil, err
		}

		created, err := svc.CreateVersion(ctx, entity.CreateVersionInput{
			EntityID:      entityID,
			CommitMessage: message,
		})
		if err != nil {
			return nil, err
		}
		return presentVersion(created), nil
	}
}

// ---------------------------------------------------------------------------
// Permission operations
// ---------------------------------------------------------------------------

func updatePermissionHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "where.id")
		if err != nil {
			return nil, err
		}

		action, err := requiredString(args, "data.action")
		if err != nil {
			return nil, err
		}
		ptype, err := requiredString(args, "data.type")
		if err != nil {
			return nil, err
		}

		updated, err := svc.UpdatePermission(ctx, entity.UpdatePermissionInput{
			EntityID: entityID,
			Action:   domain.PermissionAction(action),
			Type:     domain.PermissionType(ptype),
		})
		if err != nil {
			return nil, err
		}
		return presentPermission(updated), nil
	}
}

func updatePermissionRolesHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		entityID, err := requiredID(args, "data.entity.connect.id")
		if err != nil {
			return nil, err
		}

		action, err := requiredString(args, "data.action")
		if err != nil {
			return nil, err
		}
		delta, err := rolesDeltaArg(args)
		if err != nil {
			return nil, err
		}

		updated, err := svc.UpdatePermissionRoles(ctx, entity.UpdatePermissionRolesInput{
			EntityID: entityID,
			Action:   domain.PermissionAction(action),
			Delta:    delta,
		})
		if err != nil {
			return nil, err
		}
		return presentPermission(updated), nil
	}
}

func addPermissionFieldHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		input, err := permissionFieldInput(args, "data.entity.connect.id", "data.action", "data.fieldName")
		if err != nil {
			return nil, err
		}

		created, err := svc.AddPermissionField(ctx, input)
		if err != nil {
			return nil, err
		}
		return presentPermissionField(created), nil
	}
}

func deletePermissionFieldHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		input, err := permissionFieldInput(args, "where.entityId", "where.action", "where.fieldName")
		if err != nil {
			return nil, err
		}

		if err := svc.DeletePermissionField(ctx, input); err != nil {
			return nil, err
		}
		return map[string]any{
			"entityId":  input.EntityID.String(),
			"action":    input.Action.String(),
			"fieldName": input.FieldName,
		}, nil
	}
}

func updatePermissionFieldRolesHandler(svc *entity.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		permissionFieldID, err := requiredID(args, "data.permissionField.connect.id")
		if err != nil {
			return nil, err
		}

		delta, err := rolesDeltaArg(args)
		if err != nil {
			return nil, err
		}

		updated, err := svc.UpdatePermissionFieldRoles(ctx, entity.UpdatePermissionFieldRolesInput{
			PermissionFieldID: permissionFieldID,
			Delta:             delta,
		})
		if err != nil {
			return nil, err
		}
		return presentPermissionField(updated), nil
	}
}

// ---------------------------------------------------------------------------
// User operations
// ---------------------------------------------------------------------------

func findUserHandler(svc *user.Service) dispatch.Handler {
	return func(ctx context.Context, args *argtree.Node) (any, error) {
		filter := domain.UserFilter{}
		var err error
		if filter.ID, err = optionalUUID(args, "where.id"); err != nil {
			return nil, err
		}
		if filter.Email, err = optionalString(args, "where.email"); err != nil {
			return nil, err
		}

		u, err := svc.FindUser(ctx, filter)
		if err != nil || u == nil {
			return nil, err
		}
		return presentUser(u), nil
	}
}

// ---------------------------------------------------------------------------
// Shared argument shapes
// ---------------------------------------------------------------------------

func permissionFieldInput(args *argtree.Node, entityPath, actionPath, fieldNamePath string) (entity.PermissionFieldInput, error) {
	var input entity.PermissionFieldInput

	entityID, err := requiredID(args, entityPath)
	if err != nil {
		return input, err
	}
	action, err := requiredString(args, actionPath)
	if err != nil {
		return input, err
	}
	fieldName, err := requiredString(args, fieldNamePath)
	if err != nil {
		return input, err
	}

	input.EntityID = entityID
	input.Action = domain.PermissionAction(action)
	input.FieldName = fieldName
	return input, nil
}

func rolesDeltaArg(args *argtree.Node) (domain.PermissionRolesDelta, error) {
	var delta domain.PermissionRolesDelta
	var err error

	if delta.AddRoleIDs, err = optionalIDList(args, "data.addRoleIds"); err != nil {
		return delta, err
	}
	if delta.RemoveRoleIDs, err = optionalIDList(args, "data.removeRoleIds"); err != nil {
		return delta, err
	}
	return delta, nil
}

func versionFilterArg(args *argtree.Node, cfg config.APIConfig) (domain.VersionFilter, error) {
	filter := domain.VersionFilter{Limit: cfg.ListDefaultSize}
	var err error

	if filter.VersionNumber, err = optionalInt(args, "versions.where.versionNumber.equals"); err != nil {
		return filter, err
	}
	if filter.MinVersionNumber, err = optionalInt(args, "versions.where.versionNumber.gte"); err != nil {
		return filter, err
	}
	if filter.MaxVersionNumber, err = optionalInt(args, "versions.where.versionNumber.lte"); err != nil {
		return filter, err
	}
	if take, err := optionalInt(args, "versions.take"); err != nil {
		return filter, err
	} else if take != nil {
		filter.Limit = min(*take, cfg.ListMaxSize)
	}
	if skip, err := optionalInt(args, "versions.skip"); err != nil {
		return filter, err
	} else if skip != nil {
		filter.Offset = *skip
	}

	return filter, nil
}
