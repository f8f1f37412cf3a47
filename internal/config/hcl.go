package config

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// hclFile mirrors Config for HCL decoding. Blocks and attributes are
// pointers so absent ones leave the defaults untouched.
type hclFile struct {
	Version  *string      `hcl:"version,optional"`
	Backend  *hclBackend  `hcl:"backend,block"`
	Identity *hclIdentity `hcl:"identity,block"`
	Session  *hclSession  `hcl:"session,block"`
	Server   *hclServer   `hcl:"server,block"`
	Output   *hclOutput   `hcl:"output,block"`
	Logging  *hclLogging  `hcl:"logging,block"`
}

type hclBackend struct {
	BaseURL        *string `hcl:"base_url,optional"`
	TimeoutSeconds *int    `hcl:"timeout_seconds,optional"`
	UserAgent      *string `hcl:"user_agent,optional"`
}

type hclIdentity struct {
	DeviceID       *string   `hcl:"device_id,optional"`
	MachineIDPaths *[]string `hcl:"machine_id_paths,optional"`
}

type hclSession struct {
	Language *string `hcl:"language,optional"`
}

type hclServer struct {
	Address        *string   `hcl:"address,optional"`
	AllowedOrigins *[]string `hcl:"allowed_origins,optional"`
}

type hclOutput struct {
	DefaultFormat *string `hcl:"default_format,optional"`
	NoColor       *bool   `hcl:"no_color,optional"`
}

type hclLogging struct {
	Level       *string `hcl:"level,optional"`
	Format      *string `hcl:"format,optional"`
	Output      *string `hcl:"output,optional"`
	Development *bool   `hcl:"development,optional"`
}

// decodeHCL overlays an HCL document onto config
func decodeHCL(data []byte, filename string, config *Config) error {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return diags
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return diags
	}

	setString(&config.Version, f.Version)
	if b := f.Backend; b != nil {
		setString(&config.Backend.BaseURL, b.BaseURL)
		setString(&config.Backend.UserAgent, b.UserAgent)
		if b.TimeoutSeconds != nil {
			config.Backend.TimeoutSeconds = *b.TimeoutSeconds
		}
	}
	if i := f.Identity; i != nil {
		setString(&config.Identity.DeviceID, i.DeviceID)
		if i.MachineIDPaths != nil {
			config.Identity.MachineIDPaths = *i.MachineIDPaths
		}
	}
	if s := f.Session; s != nil {
		setString(&config.Session.Language, s.Language)
	}
	if s := f.Server; s != nil {
		setString(&config.Server.Address, s.Address)
		if s.AllowedOrigins != nil {
			config.Server.AllowedOrigins = *s.AllowedOrigins
		}
	}
	if o := f.Output; o != nil {
		setString(&config.Output.DefaultFormat, o.DefaultFormat)
		if o.NoColor != nil {
			config.Output.NoColor = *o.NoColor
		}
	}
	if l := f.Logging; l != nil {
		setString(&config.Logging.Level, l.Level)
		setString(&config.Logging.Format, l.Format)
		setString(&config.Logging.Output, l.Output)
		if l.Development != nil {
			config.Logging.Development = *l.Development
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// encodeHCL renders config as an HCL document
func encodeHCL(c *Config) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	root.SetAttributeValue("version", cty.StringVal(c.Version))

	backend := appendBlock(root, "backend")
	backend.SetAttributeValue("base_url", cty.StringVal(c.Backend.BaseURL))
	backend.SetAttributeValue("timeout_seconds", cty.NumberIntVal(int64(c.Backend.TimeoutSeconds)))
	backend.SetAttributeValue("user_agent", cty.StringVal(c.Backend.UserAgent))

	ident := appendBlock(root, "identity")
	if c.Identity.DeviceID != "" {
		ident.SetAttributeValue("device_id", cty.StringVal(c.Identity.DeviceID))
	}
	ident.SetAttributeValue("machine_id_paths", stringList(c.Identity.MachineIDPaths))

	session := appendBlock(root, "session")
	session.SetAttributeValue("language", cty.StringVal(c.Session.Language))

	server := appendBlock(root, "server")
	server.SetAttributeValue("address", cty.StringVal(c.Server.Address))
	server.SetAttributeValue("allowed_origins", stringList(c.Server.AllowedOrigins))

	output := appendBlock(root, "output")
	output.SetAttributeValue("default_format", cty.StringVal(c.Output.DefaultFormat))
	output.SetAttributeValue("no_color", cty.BoolVal(c.Output.NoColor))

	logging := appendBlock(root, "logging")
	logging.SetAttributeValue("level", cty.StringVal(c.Logging.Level))
	logging.SetAttributeValue("format", cty.StringVal(c.Logging.Format))
	logging.SetAttributeValue("output", cty.StringVal(c.Logging.Output))
	logging.SetAttributeValue("development", cty.BoolVal(c.Logging.Development))

	return f.Bytes()
}

func appendBlock(body *hclwrite.Body, name string) *hclwrite.Body {
	body.AppendNewline()
	return body.AppendNewBlock(name, nil).Body()
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
