// Package config loads a container.Options bundle from YAML, the way a
// caller would check an encoding profile into version control instead of
// constructing container.Options by hand in every call site.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-mesh-codec/container"
	"github.com/cocosip/go-mesh-codec/geom"
	"github.com/cocosip/go-mesh-codec/prediction"
)

// Profile is container.Options' YAML-serializable shape: attribute types and
// prediction methods are spelled out by name since their wire bytes aren't
// meaningful to a human-edited file.
type Profile struct {
	QuantizationBits    map[string]int `yaml:"quantization_bits"`
	PredictionMethod    string         `yaml:"prediction_method"`
	EncodingSpeed       int            `yaml:"encoding_speed"`
	EncodingMethod      string         `yaml:"encoding_method"`
	ForceEncodingMethod bool           `yaml:"force_encoding_method"`
	VersionMajor        uint8          `yaml:"version_major"`
	VersionMinor        uint8          `yaml:"version_minor"`
}

var attrNames = map[string]geom.GeometryAttributeType{
	"position": geom.AttrPosition,
	"normal":   geom.AttrNormal,
	"color":    geom.AttrColor,
	"texcoord": geom.AttrTexCoord,
	"generic":  geom.AttrGeneric,
}

var methodNames = map[string]prediction.Method{
	"none":                           prediction.MethodNone,
	"difference":                     prediction.MethodDifference,
	"parallelogram":                  prediction.MethodParallelogram,
	"constrained_multi_parallelogram": prediction.MethodConstrainedMultiParallelogram,
	"texcoords_portable":             prediction.MethodTexCoordsPortable,
	"geometric_normal":               prediction.MethodGeometricNormal,
}

var encodingMethodNames = map[string]container.EncodingMethod{
	"sequential":  container.MethodSequential,
	"edgebreaker": container.MethodEdgebreaker,
	"kdtree":      container.MethodKDTree,
}

// Load reads a Profile from a YAML file and resolves it into
// container.Options.
func Load(path string) (container.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return container.Options{}, err
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return container.Options{}, err
	}
	return p.Options()
}

// Options resolves a Profile into container.Options, translating its named
// fields into the enum values container.Options expects.
func (p Profile) Options() (container.Options, error) {
	opt := container.Options{
		EncodingSpeed:       p.EncodingSpeed,
		ForceEncodingMethod: p.ForceEncodingMethod,
		VersionMajor:        p.VersionMajor,
		VersionMinor:        p.VersionMinor,
	}
	if len(p.QuantizationBits) > 0 {
		opt.QuantizationBits = make(map[geom.GeometryAttributeType]int, len(p.QuantizationBits))
		for name, bits := range p.QuantizationBits {
			at, ok := attrNames[name]
			if !ok {
				return container.Options{}, &container.Error{Kind: container.KindBadAttribute, Message: "unknown attribute name: " + name}
			}
			opt.QuantizationBits[at] = bits
		}
	}
	if p.PredictionMethod != "" {
		m, ok := methodNames[p.PredictionMethod]
		if !ok {
			return container.Options{}, &container.Error{Kind: container.KindInvalid, Message: "unknown prediction method: " + p.PredictionMethod}
		}
		opt.PredictionMethod = m
		opt.ForcePredictionMethod = true
	}
	if p.EncodingMethod != "" {
		m, ok := encodingMethodNames[p.EncodingMethod]
		if !ok {
			return container.Options{}, &container.Error{Kind: container.KindBadEncodingMethod, Message: "unknown encoding method: " + p.EncodingMethod}
		}
		opt.EncodingMethod = m
	}
	return opt, nil
}
