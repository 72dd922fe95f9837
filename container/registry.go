package container

import "sync"

// GeometryCodec is one (GeometryType, EncodingMethod) pair's encode/decode
// implementation. meshcodec registers its Sequential/EdgeBreaker/KD-tree
// codecs here at init time rather than container switching on method bytes
// itself, keeping "which codec exists" separate from "how one is chosen".
type GeometryCodec interface {
	Name() string
	GeometryType() GeometryType
	EncodingMethod() EncodingMethod
}

type key struct {
	gt     GeometryType
	method EncodingMethod
}

// Registry maps a (GeometryType, EncodingMethod) pair to the GeometryCodec
// that implements it behind a sync.RWMutex-guarded map.
type Registry struct {
	mu     sync.RWMutex
	codecs map[key]GeometryCodec
}

var defaultRegistry = &Registry{codecs: make(map[key]GeometryCodec)}

// Register installs c into the default registry under its
// (GeometryType, EncodingMethod) pair.
func Register(c GeometryCodec) { defaultRegistry.Register(c) }

// Get retrieves the codec registered for (gt, method).
func Get(gt GeometryType, method EncodingMethod) (GeometryCodec, error) {
	return defaultRegistry.Get(gt, method)
}

// List returns every registered codec.
func List() []GeometryCodec { return defaultRegistry.List() }

func (r *Registry) Register(c GeometryCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[key{c.GeometryType(), c.EncodingMethod()}] = c
}

func (r *Registry) Get(gt GeometryType, method EncodingMethod) (GeometryCodec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[key{gt, method}]
	if !ok {
		return nil, newErr(KindBadEncodingMethod, 0, "no codec registered for this geometry type/encoding method pair")
	}
	return c, nil
}

func (r *Registry) List() []GeometryCodec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GeometryCodec, 0, len(r.codecs))
	for _, c := range r.codecs {
		out = append(out, c)
	}
	return out
}
