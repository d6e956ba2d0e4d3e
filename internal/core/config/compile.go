package config

import (
	"fmt"
	"strings"
)

// LatestStd is the standard assumed when none is configured.
const LatestStd = "c++20"

// Standards lists the accepted values of compile.std and -std, oldest first.
var Standards = []string{"c++98", "c++03", "c++11", "c++14", "c++1z", "c++17", "c++2a", "c++20"}

func ParseStd(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, std := range Standards {
		if s == std {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid value '%s' for std flag", s)
}

// Define is a macro definition from -D or compile.defines.
type Define struct {
	Name  string
	Value string
}

func (d Define) String() string {
	return d.Name + "=" + d.Value
}

// ParseDefine splits "NAME=VALUE". A bare "NAME" defines an empty value.
func ParseDefine(s string) (Define, error) {
	name, value, _ := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Define{}, fmt.Errorf("macro definition %q has no name", s)
	}
	return Define{Name: name, Value: value}, nil
}

// ParsedDefines parses every entry of compile.defines.
func (c Compile) ParsedDefines() ([]Define, error) {
	out := make([]Define, 0, len(c.Defines))
	for _, raw := range c.Defines {
		d, err := ParseDefine(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Flags renders the compile section as compiler command-line flags, the form a
// compiler-backed frontend is handed.
func (c Compile) Flags() []string {
	std := c.Std
	if c.GNUExtensions {
		std = strings.Replace(std, "c++", "gnu++", 1)
	}
	flags := []string{"-std=" + std}
	for _, dir := range c.IncludeDirs {
		flags = append(flags, "-I"+dir)
	}
	for _, d := range c.Defines {
		flags = append(flags, "-D"+d)
	}
	for _, u := range c.Undefines {
		flags = append(flags, "-U"+u)
	}
	for _, f := range c.Features {
		flags = append(flags, "-f"+f)
	}
	if c.MSVCExtensions {
		flags = append(flags, "-fms-extensions")
	}
	if c.MSVCCompatibility {
		flags = append(flags, "-fms-compatibility")
	}
	return flags
}
