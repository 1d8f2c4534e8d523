package serviceconfig

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Resolved Configuration
// =============================================================================

// ResolvedConfig is the merged per-service configuration tree: service name
// to attribute mapping, with override values taking precedence over file
// values for the same (service, attribute) pair.
type ResolvedConfig struct {
	services *Object
}

// NewResolvedConfig creates an empty resolved configuration.
func NewResolvedConfig() *ResolvedConfig {
	return &ResolvedConfig{services: NewObject()}
}

// Set inserts or overwrites one attribute for a service, creating the service
// entry if it is new.
func (c *ResolvedConfig) Set(service, attribute string, value any) {
	svc, ok := c.services.Get(service)
	if !ok {
		obj := NewObject()
		c.services.Set(service, obj)
		svc = obj
	}
	svc.(*Object).Set(attribute, value)
}

// Service returns the attribute mapping for one service.
func (c *ResolvedConfig) Service(name string) (*Object, bool) {
	v, ok := c.services.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Object), true
}

// Services returns the service names in insertion order.
func (c *ResolvedConfig) Services() []string {
	return c.services.Keys()
}

// Empty reports whether no service carries any configuration.
func (c *ResolvedConfig) Empty() bool {
	return c.services.Len() == 0
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve merges an optional config file and CLI override tokens into one
// ResolvedConfig.
//
// The file is parsed first; overrides are applied strictly after it, in the
// given order, so a later duplicate override for the same path wins.
// Override tokens have the shape "--<Service>.<attribute>=<value>"; tokens
// that do not match the shape belong to unrelated CLI flags and are ignored,
// but a matching token with an empty service or attribute segment is a
// caller mistake and fails with a ParseError.
func Resolve(configFile io.Reader, overrides []string) (*ResolvedConfig, error) {
	cfg := NewResolvedConfig()

	if configFile != nil {
		if err := parseConfigFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	for _, token := range overrides {
		service, attribute, raw, ok, err := splitOverride(token)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		cfg.Set(service, attribute, CoerceValue(raw))
	}

	return cfg, nil
}

// parseConfigFile reads a YAML/JSON document whose top level maps service
// names to attribute mappings. Document order is preserved.
func parseConfigFile(r io.Reader, cfg *ResolvedConfig) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return NewParseError("config file", err.Error(), err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return NewParseError("config file", err.Error(), ErrInvalidYAML)
	}

	if len(doc.Content) == 0 {
		return nil // empty file yields an empty mapping
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return NewParseError("config file", "top level must be a mapping of service names", ErrNotAMapping)
	}

	for i := 0; i < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := resolveAlias(root.Content[i+1])

		if valNode.Kind != yaml.MappingNode {
			return NewParseError("config file",
				fmt.Sprintf("service %q must map attributes to values", keyNode.Value),
				ErrNotAMapping)
		}

		for j := 0; j < len(valNode.Content); j += 2 {
			attrNode := valNode.Content[j]
			value, err := yamlValue(valNode.Content[j+1])
			if err != nil {
				return NewParseError("config file",
					fmt.Sprintf("service %q attribute %q: %v", keyNode.Value, attrNode.Value, err),
					ErrInvalidYAML)
			}
			cfg.Set(keyNode.Value, attrNode.Value, value)
		}
	}

	return nil
}

// yamlValue converts a YAML node into an ordered in-memory value.
func yamlValue(node *yaml.Node) (any, error) {
	node = resolveAlias(node)

	switch node.Kind {
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i < len(node.Content); i += 2 {
			v, err := yamlValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(node.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
	}
}

// yamlScalar converts a scalar node using its resolved tag.
func yamlScalar(node *yaml.Node) (any, error) {
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, err
		}
		return i, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!null":
		return nil, nil
	default:
		return node.Value, nil
	}
}

// resolveAlias follows YAML anchors to the aliased node.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// =============================================================================
// Override Token Parsing
// =============================================================================

// splitOverride splits one override token into service, attribute and raw
// value. ok is false for tokens that do not match the override shape; err is
// set when the token matches the shape but a path segment is empty.
func splitOverride(token string) (service, attribute, raw string, ok bool, err error) {
	body, found := strings.CutPrefix(token, "--")
	if !found {
		return "", "", "", false, nil
	}

	path, raw, found := strings.Cut(body, "=")
	if !found {
		return "", "", "", false, nil // boolean flag of some other subsystem
	}

	service, attribute, found = strings.Cut(path, ".")
	if !found {
		return "", "", "", false, nil // plain flag like --name=value
	}

	if service == "" || attribute == "" {
		return "", "", "", false, NewParseError(token,
			"override must have the form --<Service>.<attribute>=<value>",
			ErrInvalidOverride)
	}

	return service, attribute, raw, true, nil
}
