package geom

// PointCloud is an ordered list of PointAttributes sharing a common point
// count. Attribute IDs are their position in the list; UniqueID defaults to
// that position on insertion unless the caller overrides it.
type PointCloud struct {
	attributes []*PointAttribute
	numPoints  int
}

// NewPointCloud returns an empty point cloud with the given point count.
func NewPointCloud(numPoints int) *PointCloud {
	return &PointCloud{numPoints: numPoints}
}

// NumPoints returns the point count.
func (p *PointCloud) NumPoints() int { return p.numPoints }

// SetNumPoints overrides the point count (used by decoders once the header
// declares it).
func (p *PointCloud) SetNumPoints(n int) { p.numPoints = n }

// NumAttributes returns the number of attached attributes.
func (p *PointCloud) NumAttributes() int { return len(p.attributes) }

// Attribute returns the attribute at position id (its attribute ID).
func (p *PointCloud) Attribute(id int) *PointAttribute { return p.attributes[id] }

// Attributes returns the full attribute list in insertion order.
func (p *PointCloud) Attributes() []*PointAttribute { return p.attributes }

// AddAttribute appends attr, assigning it UniqueID = its new position unless
// attr.UniqueID is already non-zero (caller override).
func (p *PointCloud) AddAttribute(attr *PointAttribute) int {
	id := len(p.attributes)
	if attr.UniqueID == 0 {
		attr.UniqueID = uint32(id)
	}
	p.attributes = append(p.attributes, attr)
	return id
}

// AttributeByType returns the first attribute of the given type, or nil.
func (p *PointCloud) AttributeByType(t GeometryAttributeType) *PointAttribute {
	for _, a := range p.attributes {
		if a.AttributeType == t {
			return a
		}
	}
	return nil
}
