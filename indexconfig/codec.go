package indexconfig

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes a serialized IndexConfig.
func Unmarshal(b []byte) (*IndexConfig, error) {
	c := &IndexConfig{}
	if err := c.unmarshal(b); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal encodes c. Unset enums and empty repeated fields are omitted.
func (c *IndexConfig) Marshal() []byte {
	return c.appendTo(nil)
}

func (c *IndexConfig) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n, err := consumeMessage(num, typ, v)
			if err != nil {
				return 0, err
			}
			if c.ScannConfig == nil {
				c.ScannConfig = &ScannOnDeviceConfig{}
			}
			if err := c.ScannConfig.unmarshal(msg); err != nil {
				return 0, fmt.Errorf("scann_config: %w", err)
			}
			return n, nil
		case 2:
			x, n, err := consumeVarint(num, typ, v)
			c.EmbeddingType = EmbeddingType(int32(x))
			return n, err
		case 3:
			x, n, err := consumeVarint(num, typ, v)
			c.EmbeddingDim = uint32(x)
			return n, err
		case 4:
			return consumeUint32s(num, typ, v, &c.GlobalPartitionOffsets)
		}
		return skipField, nil
	})
}

func (c *IndexConfig) appendTo(b []byte) []byte {
	if c.ScannConfig != nil {
		b = appendMessage(b, 1, c.ScannConfig.appendTo(nil))
	}
	b = appendEnum(b, 2, int32(c.EmbeddingType))
	if c.EmbeddingDim != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.EmbeddingDim))
	}
	return appendPackedUint32s(b, 4, c.GlobalPartitionOffsets)
}

func (c *ScannOnDeviceConfig) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n, err := consumeMessage(num, typ, v)
			if err != nil {
				return 0, err
			}
			if c.Partitioner == nil {
				c.Partitioner = &Partitioner{}
			}
			if err := c.Partitioner.unmarshal(msg); err != nil {
				return 0, fmt.Errorf("partitioner: %w", err)
			}
			return n, nil
		case 2:
			msg, n, err := consumeMessage(num, typ, v)
			if err != nil {
				return 0, err
			}
			if c.Indexer == nil {
				c.Indexer = &Indexer{}
			}
			if err := c.Indexer.unmarshal(msg); err != nil {
				return 0, fmt.Errorf("indexer: %w", err)
			}
			return n, nil
		case 3:
			return consumeMeasure(num, typ, v, &c.QueryDistance)
		}
		return skipField, nil
	})
}

func (c *ScannOnDeviceConfig) appendTo(b []byte) []byte {
	if c.Partitioner != nil {
		b = appendMessage(b, 1, c.Partitioner.appendTo(nil))
	}
	if c.Indexer != nil {
		b = appendMessage(b, 2, c.Indexer.appendTo(nil))
	}
	return appendEnum(b, 3, int32(c.QueryDistance))
}

func (p *Partitioner) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n, err := consumeMessage(num, typ, v)
			if err != nil {
				return 0, err
			}
			var leaf DatabasePoint
			if err := leaf.unmarshal(msg); err != nil {
				return 0, fmt.Errorf("leaf %d: %w", len(p.Leaf), err)
			}
			p.Leaf = append(p.Leaf, leaf)
			return n, nil
		case 2:
			x, n, err := consumeFloat(num, typ, v)
			p.SearchFraction = x
			return n, err
		case 3:
			return consumeMeasure(num, typ, v, &p.QueryDistance)
		}
		return skipField, nil
	})
}

func (p *Partitioner) appendTo(b []byte) []byte {
	for i := range p.Leaf {
		b = appendMessage(b, 1, p.Leaf[i].appendTo(nil))
	}
	if p.SearchFraction != 0 {
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(p.SearchFraction))
	}
	return appendEnum(b, 3, int32(p.QueryDistance))
}

func (x *Indexer) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 {
			return skipField, nil
		}
		msg, n, err := consumeMessage(num, typ, v)
		if err != nil {
			return 0, err
		}
		if x.AsymmetricHashing == nil {
			x.AsymmetricHashing = &AsymmetricHashing{}
		}
		if err := x.AsymmetricHashing.unmarshal(msg); err != nil {
			return 0, fmt.Errorf("asymmetric_hashing: %w", err)
		}
		return n, nil
	})
}

func (x *Indexer) appendTo(b []byte) []byte {
	if x.AsymmetricHashing != nil {
		b = appendMessage(b, 1, x.AsymmetricHashing.appendTo(nil))
	}
	return b
}

func (a *AsymmetricHashing) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n, err := consumeMessage(num, typ, v)
			if err != nil {
				return 0, err
			}
			var sub SubspaceCodebook
			if err := sub.unmarshal(msg); err != nil {
				return 0, fmt.Errorf("subspace %d: %w", len(a.Subspace), err)
			}
			a.Subspace = append(a.Subspace, sub)
			return n, nil
		case 2:
			return consumeMeasure(num, typ, v, &a.QueryDistance)
		case 3:
			x, n, err := consumeVarint(num, typ, v)
			a.LookupType = LookupType(int32(x))
			return n, err
		}
		return skipField, nil
	})
}

func (a *AsymmetricHashing) appendTo(b []byte) []byte {
	for i := range a.Subspace {
		b = appendMessage(b, 1, a.Subspace[i].appendTo(nil))
	}
	b = appendEnum(b, 2, int32(a.QueryDistance))
	return appendEnum(b, 3, int32(a.LookupType))
}

func (s *SubspaceCodebook) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 {
			return skipField, nil
		}
		msg, n, err := consumeMessage(num, typ, v)
		if err != nil {
			return 0, err
		}
		var entry DatabasePoint
		if err := entry.unmarshal(msg); err != nil {
			return 0, fmt.Errorf("entry %d: %w", len(s.Entry), err)
		}
		s.Entry = append(s.Entry, entry)
		return n, nil
	})
}

func (s *SubspaceCodebook) appendTo(b []byte) []byte {
	for i := range s.Entry {
		b = appendMessage(b, 1, s.Entry[i].appendTo(nil))
	}
	return b
}

func (p *DatabasePoint) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 {
			return skipField, nil
		}
		return consumeFloats(num, typ, v, &p.Dimension)
	})
}

func (p *DatabasePoint) appendTo(b []byte) []byte {
	return appendPackedFloats(b, 1, p.Dimension)
}
