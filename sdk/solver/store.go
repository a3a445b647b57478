package solver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/liarsdice/internal/fileutil"
	"github.com/lox/liarsdice/internal/game"
)

const storeFormatVersion = 1

// ErrUntrainedPolicy is returned when no trained policy exists for a request.
var ErrUntrainedPolicy = errors.New("untrained policy")

// PolicyStore holds one trained policy per (dice counts, faces) configuration.
type PolicyStore struct {
	policies map[ConfigKey]Policy
}

// NewPolicyStore returns an empty store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{policies: make(map[ConfigKey]Policy)}
}

// Put stores p under key, replacing any previous policy.
func (s *PolicyStore) Put(key ConfigKey, p Policy) {
	s.policies[key] = p
}

// Get returns the policy stored under key.
func (s *PolicyStore) Get(key ConfigKey) (Policy, bool) {
	p, ok := s.policies[key]
	return p, ok
}

// Has reports whether key has been trained.
func (s *PolicyStore) Has(key ConfigKey) bool {
	_, ok := s.policies[key]
	return ok
}

// Len is the number of stored configurations.
func (s *PolicyStore) Len() int { return len(s.policies) }

// Keys returns the stored configurations in ascending order.
func (s *PolicyStore) Keys() []ConfigKey {
	keys := make([]ConfigKey, 0, len(s.policies))
	for k := range s.policies {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, ConfigKey.Compare)
	return keys
}

// Lookup finds the policy for the given dice counts and faces. A store holding
// exactly one policy serves it for every configuration.
func (s *PolicyStore) Lookup(diceCounts, faces []int) (Policy, bool) {
	if p, ok := s.policies[NewConfigKey(diceCounts, faces)]; ok {
		return p, true
	}
	if len(s.policies) == 1 {
		for _, p := range s.policies {
			return p, true
		}
	}
	return nil, false
}

// SaveStore writes the store to path atomically.
func SaveStore(path string, s *PolicyStore) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		mw := msgp.NewWriter(w)
		if err := s.EncodeMsg(mw); err != nil {
			return err
		}
		return mw.Flush()
	})
	if err != nil {
		return fmt.Errorf("save policy store: %w", err)
	}
	return nil
}

// LoadStore reads a store written by SaveStore. A missing file yields
// ErrUntrainedPolicy.
func LoadStore(path string) (*PolicyStore, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no policy store at %s", ErrUntrainedPolicy, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := NewPolicyStore()
	if err := s.DecodeMsg(msgp.NewReader(f)); err != nil {
		return nil, fmt.Errorf("load policy store %s: %w", path, err)
	}
	return s, nil
}

// EncodeMsg implements msgp.Encodable.
//
// Layout: {"version": int, "policies": [{"dice": [..], "faces": [..],
// "infosets": [[dice, bid|nil, [[action, prob], ...]], ...]}, ...]} where a
// bid or bid action is [quantity, face] and a challenge is the string "liar".
func (s *PolicyStore) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(2); err != nil {
		return err
	}
	if err := w.WriteString("version"); err != nil {
		return err
	}
	if err := w.WriteInt(storeFormatVersion); err != nil {
		return err
	}
	if err := w.WriteString("policies"); err != nil {
		return err
	}
	keys := s.Keys()
	if err := w.WriteArrayHeader(uint32(len(keys))); err != nil {
		return err
	}
	for _, key := range keys {
		if err := encodePolicy(w, key, s.policies[key]); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
	}
	return nil
}

func encodePolicy(w *msgp.Writer, key ConfigKey, p Policy) error {
	if err := w.WriteMapHeader(3); err != nil {
		return err
	}
	if err := w.WriteString("dice"); err != nil {
		return err
	}
	if err := writeInts(w, key.DiceCounts()); err != nil {
		return err
	}
	if err := w.WriteString("faces"); err != nil {
		return err
	}
	if err := writeInts(w, key.Faces()); err != nil {
		return err
	}
	if err := w.WriteString("infosets"); err != nil {
		return err
	}
	infosets := p.Keys()
	if err := w.WriteArrayHeader(uint32(len(infosets))); err != nil {
		return err
	}
	for _, k := range infosets {
		if err := w.WriteArrayHeader(3); err != nil {
			return err
		}
		if err := writeInts(w, k.Hand.Dice()); err != nil {
			return err
		}
		if last := k.LastBid(); last != nil {
			if err := writeInts(w, []int{last.Quantity, last.Face}); err != nil {
				return err
			}
		} else if err := w.WriteNil(); err != nil {
			return err
		}
		dist := p[k]
		actions := dist.Actions()
		if err := w.WriteArrayHeader(uint32(len(actions))); err != nil {
			return err
		}
		for _, a := range actions {
			if err := w.WriteArrayHeader(2); err != nil {
				return err
			}
			if err := writeAction(w, a); err != nil {
				return err
			}
			if err := w.WriteFloat64(dist[a]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAction(w *msgp.Writer, a game.Action) error {
	if a.IsCall() {
		return w.WriteString(a.Key())
	}
	return writeInts(w, []int{a.Bid.Quantity, a.Bid.Face})
}

func writeInts(w *msgp.Writer, xs []int) error {
	if err := w.WriteArrayHeader(uint32(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := w.WriteInt(x); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable.
func (s *PolicyStore) DecodeMsg(r *msgp.Reader) error {
	if s.policies == nil {
		s.policies = make(map[ConfigKey]Policy)
	}
	fields, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	version := -1
	for i := uint32(0); i < fields; i++ {
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		switch name {
		case "version":
			if version, err = r.ReadInt(); err != nil {
				return err
			}
			if version != storeFormatVersion {
				return fmt.Errorf("unsupported policy store version %d", version)
			}
		case "policies":
			n, err := r.ReadArrayHeader()
			if err != nil {
				return err
			}
			for j := uint32(0); j < n; j++ {
				key, p, err := decodePolicy(r)
				if err != nil {
					return fmt.Errorf("policy %d: %w", j, err)
				}
				s.policies[key] = p
			}
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	if version < 0 {
		return errors.New("policy store has no version header")
	}
	return nil
}

func decodePolicy(r *msgp.Reader) (ConfigKey, Policy, error) {
	fields, err := r.ReadMapHeader()
	if err != nil {
		return ConfigKey{}, nil, err
	}
	var dice, faces []int
	p := make(Policy)
	for i := uint32(0); i < fields; i++ {
		name, err := r.ReadString()
		if err != nil {
			return ConfigKey{}, nil, err
		}
		switch name {
		case "dice":
			if dice, err = readInts(r); err != nil {
				return ConfigKey{}, nil, err
			}
		case "faces":
			if faces, err = readInts(r); err != nil {
				return ConfigKey{}, nil, err
			}
		case "infosets":
			if err := decodeInfoSets(r, p); err != nil {
				return ConfigKey{}, nil, err
			}
		default:
			if err := r.Skip(); err != nil {
				return ConfigKey{}, nil, err
			}
		}
	}
	if len(dice) == 0 || len(faces) == 0 {
		return ConfigKey{}, nil, errors.New("policy missing dice or faces")
	}
	return NewConfigKey(dice, faces), p, nil
}

func decodeInfoSets(r *msgp.Reader, p Policy) error {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if sz, err := r.ReadArrayHeader(); err != nil {
			return err
		} else if sz != 3 {
			return fmt.Errorf("info set entry has %d fields, want 3", sz)
		}
		dice, err := readInts(r)
		if err != nil {
			return err
		}
		hand, ok := TryNewHand(dice)
		if !ok {
			return fmt.Errorf("info set hand %v cannot be encoded", dice)
		}
		var last *game.Bid
		if r.IsNil() {
			if err := r.ReadNil(); err != nil {
				return err
			}
		} else {
			qf, err := readInts(r)
			if err != nil {
				return err
			}
			if len(qf) != 2 {
				return errors.New("bid must be [quantity, face]")
			}
			last = &game.Bid{Quantity: qf[0], Face: qf[1]}
		}

		count, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		dist := make(Distribution, count)
		for j := uint32(0); j < count; j++ {
			if sz, err := r.ReadArrayHeader(); err != nil {
				return err
			} else if sz != 2 {
				return fmt.Errorf("action entry has %d fields, want 2", sz)
			}
			a, err := readAction(r)
			if err != nil {
				return err
			}
			prob, err := r.ReadFloat64()
			if err != nil {
				return err
			}
			dist[a] = prob
		}
		p[keyFor(hand, last)] = dist
	}
	return nil
}

func readAction(r *msgp.Reader) (game.Action, error) {
	typ, err := r.NextType()
	if err != nil {
		return game.Action{}, err
	}
	if typ == msgp.StrType {
		s, err := r.ReadString()
		if err != nil {
			return game.Action{}, err
		}
		return game.ParseAction(s)
	}
	qf, err := readInts(r)
	if err != nil {
		return game.Action{}, err
	}
	if len(qf) != 2 {
		return game.Action{}, errors.New("bid action must be [quantity, face]")
	}
	return game.BidAction(qf[0], qf[1]), nil
}

func readInts(r *msgp.Reader) ([]int, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		if out[i], err = r.ReadInt(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
