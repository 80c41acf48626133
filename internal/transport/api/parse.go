package api

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/authz"
	"github.com/forgewell/appforge-backend/internal/domain"
)

// Argument decoding helpers. Absence and malformation are distinguished:
// optional helpers treat a missing or null path as "not provided", while any
// present-but-wrong-shape value fails with a field-level validation error.

func requiredID(args *argtree.Node, path string) (uuid.UUID, error) {
	id, err := authz.ExtractID(args, path)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(path, "a uuid is required")
	}
	return id, nil
}

func requiredString(args *argtree.Node, path string) (string, error) {
	s, err := args.StringAt(path)
	if err != nil {
		return "", domain.NewValidationError(path, "a string is required")
	}
	return s, nil
}

func optionalString(args *argtree.Node, path string) (*string, error) {
	node, err := args.Resolve(path)
	if err != nil {
		if errors.Is(err, argtree.ErrPathNotFound) {
			return nil, nil
		}
		return nil, domain.NewValidationError(path, "malformed value")
	}
	if node.IsNull() {
		return nil, nil
	}
	s, err := node.StringValue()
	if err != nil {
		return nil, domain.NewValidationError(path, "a string is required")
	}
	return &s, nil
}

func optionalBool(args *argtree.Node, path string) (*bool, error) {
	node, err := args.Resolve(path)
	if err != nil {
		if errors.Is(err, argtree.ErrPathNotFound) {
			return nil, nil
		}
		return nil, domain.NewValidationError(path, "malformed value")
	}
	if node.IsNull() {
		return nil, nil
	}
	b, err := node.BoolValue()
	if err != nil {
		return nil, domain.NewValidationError(path, "a boolean is required")
	}
	return &b, nil
}

func optionalInt(args *argtree.Node, path string) (*int, error) {
	node, err := args.Resolve(path)
	if err != nil {
		if errors.Is(err, argtree.ErrPathNotFound) {
			return nil, nil
		}
		return nil, domain.NewValidationError(path, "malformed value")
	}
	if node.IsNull() {
		return nil, nil
	}
	f, err := node.NumberValue()
	if err != nil {
		return nil, domain.NewValidationError(path, "a number is required")
	}
	n := int(f)
	if float64(n) != f {
		return nil, domain.NewValidationError(path, "an integer is required")
	}
	return &n, nil
}

func optionalObject(args *argtree.Node, path string) (map[string]any, error) {
	node, err := args.Resolve(path)
	if err != nil {
		if errors.Is(err, argtree.ErrPathNotFound) {
			return nil, nil
		}
		return nil, domain.NewValidationError(path, "malformed value")
	}
	if node.IsNull() {
		return nil, nil
	}
	if node.Kind() != argtree.KindObject {
		return nil, domain.NewValidationError(path, "an object is required")
	}
	m, _ := node.ToValue().(map[string]any)
	return m, nil
}

func optionalIDList(args *argtree.Node, path string) ([]uuid.UUID, error) {
	node, err := args.Resolve(path)
	if err != nil {
		if errors.Is(err, argtree.ErrPathNotFound) {
			return nil, nil
		}
		return nil, domain.NewValidationError(path, "malformed value")
	}
	if node.IsNull() {
		return nil, nil
	}
	items, err := node.Items()
	if err != nil {
		return nil, domain.NewValidationError(path, "a list of uuids is required")
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		s, err := item.StringValue()
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("%s.%d", path, i), "a uuid is required")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("%s.%d", path, i), "a uuid is required")
		}
		ids[i] = id
	}
	return ids, nil
}

func optionalUUID(args *argtree.Node, path string) (*uuid.UUID, error) {
	s, err := optionalString(args, path)
	if err != nil || s == nil {
		return nil, err
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, domain.NewValidationError(path, "a uuid is required")
	}
	return &id, nil
}

// hasArg reports whether a path is present in the argument tree (null counts
// as present).
func hasArg(args *argtree.Node, path string) bool {
	_, err := args.Resolve(path)
	return err == nil
}
