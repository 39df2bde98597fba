package collection

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"forge/internal/identifier"
	"forge/internal/template"
)

// yamlCollection is the raw YAML shape of a collection document. Profile
// field values and recipe/chain template strings are decoded as plain
// strings here and parsed into template.Template by convert*, mirroring the
// teacher's separation of a YAML-specific decode struct from clean domain
// types (dslyaml.yamlRawNode / dsl.RawNode).
type yamlCollection struct {
	Profiles map[string]map[string]string `yaml:"profiles,omitempty"`
	Recipes  map[string]yamlRecipe        `yaml:"recipes,omitempty"`
	Chains   map[string]yamlChain         `yaml:"chains,omitempty"`
}

type yamlRecipe struct {
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    *string           `yaml:"body,omitempty"`
}

// yamlChain decodes a chain definition. Exactly one of the source-shaped
// fields (Request, Command, File, Environment, Prompt) must be present; the
// branch that is set determines the chain's SourceKind.
//
// Command uses yaml.Node for polymorphic decoding (a single string or a
// sequence), the same trick dslyaml.go uses for its `command`/`uses` fields:
// an absent key is detected by checking Command.Kind == 0.
type yamlChain struct {
	Request     *yamlRequestSource `yaml:"request,omitempty"`
	Command     yaml.Node          `yaml:"command,omitempty"`
	Stdin       *string            `yaml:"stdin,omitempty"`
	File        *string            `yaml:"file,omitempty"`
	Environment *string            `yaml:"environment,omitempty"`
	Prompt      *yamlPromptSource  `yaml:"prompt,omitempty"`

	Selector    string `yaml:"selector,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
	Trim        string `yaml:"trim,omitempty"`
	Sensitive   bool   `yaml:"sensitive,omitempty"`
}

type yamlRequestSource struct {
	Recipe      string `yaml:"recipe"`
	Trigger     string `yaml:"trigger,omitempty"`      // never|no_history|always|expire (default: no_history)
	ExpireAfter string `yaml:"expire_after,omitempty"` // duration string, required when trigger: expire
	Section     string `yaml:"section,omitempty"`      // "body" (default) or "header:<Name>"
}

type yamlPromptSource struct {
	Message *string `yaml:"message,omitempty"`
	Default *string `yaml:"default,omitempty"`
}

// Parse decodes a single YAML collection document.
func Parse(data []byte) (*Collection, error) {
	var yc yamlCollection
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("phase=parse: %w", err)
	}
	return convertCollection(yc)
}

func convertCollection(yc yamlCollection) (*Collection, error) {
	var errs error

	profiles := make(map[string]*Profile, len(yc.Profiles))
	for name, fields := range yc.Profiles {
		p, err := convertProfile(name, fields)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: %w", name, err))
			continue
		}
		profiles[name] = p
	}

	recipes := make(map[string]*Recipe, len(yc.Recipes))
	for name, yr := range yc.Recipes {
		r, err := convertRecipe(name, yr)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("recipe %q: %w", name, err))
			continue
		}
		recipes[name] = r
	}

	chains := make(map[string]*Chain, len(yc.Chains))
	for name, ych := range yc.Chains {
		c, err := convertChain(name, ych)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("chain %q: %w", name, err))
			continue
		}
		chains[name] = c
	}

	if errs != nil {
		return nil, errs
	}

	return &Collection{Profiles: profiles, Recipes: recipes, Chains: chains}, nil
}

func convertProfile(name string, fields map[string]string) (*Profile, error) {
	id, err := identifier.Parse(name)
	if err != nil {
		return nil, err
	}
	data := make(map[string]template.Template, len(fields))
	var errs error
	for k, v := range fields {
		if _, err := identifier.Parse(k); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field %q: %w", k, err))
			continue
		}
		tmpl, err := template.Parse(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field %q: %w", k, err))
			continue
		}
		data[k] = tmpl
	}
	if errs != nil {
		return nil, errs
	}
	return &Profile{ID: id, Data: data}, nil
}

func convertRecipe(name string, yr yamlRecipe) (*Recipe, error) {
	id, err := identifier.Parse(name)
	if err != nil {
		return nil, err
	}
	var errs error

	method, err := template.Parse(yr.Method)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("method: %w", err))
	}
	url, err := template.Parse(yr.URL)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("url: %w", err))
	}

	headers := make(map[string]template.Template, len(yr.Headers))
	for k, v := range yr.Headers {
		tmpl, err := template.Parse(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("header %q: %w", k, err))
			continue
		}
		headers[k] = tmpl
	}

	var body *template.Template
	if yr.Body != nil {
		tmpl, err := template.Parse(*yr.Body)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("body: %w", err))
		} else {
			body = &tmpl
		}
	}

	if errs != nil {
		return nil, errs
	}
	return &Recipe{ID: id, Method: method, URL: url, Headers: headers, Body: body}, nil
}

func convertChain(name string, ych yamlChain) (*Chain, error) {
	id, err := identifier.Parse(name)
	if err != nil {
		return nil, err
	}

	source, err := convertChainSource(ych)
	if err != nil {
		return nil, err
	}

	trim, err := convertTrim(ych.Trim)
	if err != nil {
		return nil, err
	}

	return &Chain{
		ID:          id,
		Source:      source,
		Selector:    ych.Selector,
		ContentType: ych.ContentType,
		Trim:        trim,
		Sensitive:   ych.Sensitive,
	}, nil
}

func convertChainSource(ych yamlChain) (ChainSource, error) {
	present := 0
	if ych.Request != nil {
		present++
	}
	if ych.Command.Kind != 0 {
		present++
	}
	if ych.File != nil {
		present++
	}
	if ych.Environment != nil {
		present++
	}
	if ych.Prompt != nil {
		present++
	}
	if present != 1 {
		return ChainSource{}, fmt.Errorf(
			"exactly one of request/command/file/environment/prompt must be set, found %d", present)
	}

	switch {
	case ych.Request != nil:
		src, err := convertRequestSource(*ych.Request)
		if err != nil {
			return ChainSource{}, fmt.Errorf("request: %w", err)
		}
		return ChainSource{Kind: SourceRequest, Request: &src}, nil

	case ych.Command.Kind != 0:
		cmd, err := convertCommandSource(ych.Command, ych.Stdin)
		if err != nil {
			return ChainSource{}, fmt.Errorf("command: %w", err)
		}
		return ChainSource{Kind: SourceCommand, Command: &cmd}, nil

	case ych.File != nil:
		path, err := template.Parse(*ych.File)
		if err != nil {
			return ChainSource{}, fmt.Errorf("file: %w", err)
		}
		return ChainSource{Kind: SourceFile, File: &FileSource{Path: path}}, nil

	case ych.Environment != nil:
		v, err := template.Parse(*ych.Environment)
		if err != nil {
			return ChainSource{}, fmt.Errorf("environment: %w", err)
		}
		return ChainSource{Kind: SourceEnvironment, Environment: &EnvironmentSource{Variable: v}}, nil

	default: // ych.Prompt != nil
		p, err := convertPromptSource(*ych.Prompt)
		if err != nil {
			return ChainSource{}, fmt.Errorf("prompt: %w", err)
		}
		return ChainSource{Kind: SourcePrompt, Prompt: &p}, nil
	}
}

func convertRequestSource(yr yamlRequestSource) (RequestSource, error) {
	recipeID, err := identifier.Parse(yr.Recipe)
	if err != nil {
		return RequestSource{}, fmt.Errorf("recipe: %w", err)
	}

	trigger, err := convertTrigger(yr.Trigger, yr.ExpireAfter)
	if err != nil {
		return RequestSource{}, err
	}

	section, err := convertSection(yr.Section)
	if err != nil {
		return RequestSource{}, err
	}

	return RequestSource{Recipe: recipeID, Trigger: trigger, Section: section}, nil
}

func convertTrigger(kind, expireAfter string) (Trigger, error) {
	switch kind {
	case "", "no_history":
		return Trigger{Kind: TriggerNoHistory}, nil
	case "never":
		return Trigger{Kind: TriggerNever}, nil
	case "always":
		return Trigger{Kind: TriggerAlways}, nil
	case "expire":
		d, err := time.ParseDuration(expireAfter)
		if err != nil {
			return Trigger{}, fmt.Errorf("trigger: expire requires a valid expire_after duration: %w", err)
		}
		return Trigger{Kind: TriggerExpire, Expire: d}, nil
	default:
		return Trigger{}, fmt.Errorf("trigger: unknown value %q", kind)
	}
}

func convertSection(s string) (Section, error) {
	if s == "" || s == "body" {
		return Section{Kind: SectionBody}, nil
	}
	if rest, ok := strings.CutPrefix(s, "header:"); ok && rest != "" {
		return Section{Kind: SectionHeader, Header: rest}, nil
	}
	return Section{}, fmt.Errorf("section: expected \"body\" or \"header:<Name>\", got %q", s)
}

func convertCommandSource(node yaml.Node, stdin *string) (CommandSource, error) {
	var tokens []string
	switch node.Kind {
	case yaml.ScalarNode:
		tokens = strings.Fields(node.Value)
	case yaml.SequenceNode:
		if err := node.Decode(&tokens); err != nil {
			return CommandSource{}, fmt.Errorf("command sequence: %w", err)
		}
	default:
		return CommandSource{}, fmt.Errorf("command must be a string or sequence, got YAML kind %d", node.Kind)
	}
	if len(tokens) == 0 {
		return CommandSource{}, fmt.Errorf("command must not be empty")
	}

	cmdTemplates := make([]template.Template, len(tokens))
	var errs error
	for i, tok := range tokens {
		tmpl, err := template.Parse(tok)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("command[%d]: %w", i, err))
			continue
		}
		cmdTemplates[i] = tmpl
	}
	if errs != nil {
		return CommandSource{}, errs
	}

	var stdinTmpl *template.Template
	if stdin != nil {
		tmpl, err := template.Parse(*stdin)
		if err != nil {
			return CommandSource{}, fmt.Errorf("stdin: %w", err)
		}
		stdinTmpl = &tmpl
	}

	return CommandSource{Command: cmdTemplates, Stdin: stdinTmpl}, nil
}

func convertPromptSource(yp yamlPromptSource) (PromptSource, error) {
	var message, def *template.Template
	if yp.Message != nil {
		tmpl, err := template.Parse(*yp.Message)
		if err != nil {
			return PromptSource{}, fmt.Errorf("message: %w", err)
		}
		message = &tmpl
	}
	if yp.Default != nil {
		tmpl, err := template.Parse(*yp.Default)
		if err != nil {
			return PromptSource{}, fmt.Errorf("default: %w", err)
		}
		def = &tmpl
	}
	return PromptSource{Message: message, Default: def}, nil
}

func convertTrim(s string) (TrimPolicy, error) {
	switch s {
	case "", "none":
		return TrimNone, nil
	case "start":
		return TrimStart, nil
	case "end":
		return TrimEnd, nil
	case "both":
		return TrimBoth, nil
	default:
		return TrimNone, fmt.Errorf("trim: unknown value %q", s)
	}
}
