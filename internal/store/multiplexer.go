package store

import (
	"fmt"
	"sync"
)

// Multiplexer composes N physical Serializers into nProxies logical
// pseudo-serializers, round-robin assigning each proxy to a backing
// file. It must outlive every shard built on top of its proxies.
type Multiplexer struct {
	serializers []*Serializer
	Proxies     []*PseudoSerializer
}

func fileForProxy(proxyIdx, nFiles int) int {
	return proxyIdx % nFiles
}

// CreateMultiplexer formats nFiles backing files and lays down nProxies
// empty logical slices over them, the *format* phase of spec.md §3's
// lifecycle. Per-file formatting runs in parallel; see Fanout.
func CreateMultiplexer(paths []string, nProxies int) error {
	if len(paths) < 1 || len(paths) > MaxSerializers {
		return fmt.Errorf("n_files=%d out of range [1,%d]", len(paths), MaxSerializers)
	}
	if nProxies < 1 {
		return fmt.Errorf("n_proxies=%d must be >= 1", nProxies)
	}

	errs := Fanout(len(paths), func(i int) error {
		s, err := CreateSerializer(paths[i])
		if err != nil {
			return err
		}
		return s.Close()
	})
	if err := firstErr(errs); err != nil {
		return err
	}

	serializers, err := openAll(paths)
	if err != nil {
		return err
	}
	defer closeAll(serializers)

	mux := bindMultiplexer(serializers, nProxies)
	errs = Fanout(len(mux.Proxies), func(i int) error {
		return mux.Proxies[i].Clear()
	})
	return firstErr(errs)
}

// OpenMultiplexer opens nFiles existing backing files in parallel and
// attaches a multiplexer over them, the *serve* phase's bring-up.
func OpenMultiplexer(paths []string, nProxies int) (*Multiplexer, error) {
	serializers, err := openAll(paths)
	if err != nil {
		return nil, err
	}
	return bindMultiplexer(serializers, nProxies), nil
}

func openAll(paths []string) ([]*Serializer, error) {
	out := make([]*Serializer, len(paths))
	errs := Fanout(len(paths), func(i int) error {
		s, err := OpenSerializer(paths[i])
		if err != nil {
			return err
		}
		out[i] = s
		return nil
	})
	if err := firstErr(errs); err != nil {
		closeAll(out)
		return nil, err
	}
	return out, nil
}

func closeAll(serializers []*Serializer) {
	_ = Fanout(len(serializers), func(i int) error {
		if serializers[i] != nil {
			return serializers[i].Close()
		}
		return nil
	})
}

func bindMultiplexer(serializers []*Serializer, nProxies int) *Multiplexer {
	proxies := make([]*PseudoSerializer, nProxies)
	for i := 0; i < nProxies; i++ {
		proxies[i] = &PseudoSerializer{
			serializer: serializers[fileForProxy(i, len(serializers))],
			prefix:     slicePrefix(i),
		}
	}
	return &Multiplexer{serializers: serializers, Proxies: proxies}
}

// Close closes every backing file. Must only be called after every shard
// built on this multiplexer's proxies has been destroyed.
func (m *Multiplexer) Close() error {
	var mu sync.Mutex
	var firstSeen error
	_ = Fanout(len(m.serializers), func(i int) error {
		err := m.serializers[i].Close()
		if err != nil {
			mu.Lock()
			if firstSeen == nil {
				firstSeen = err
			}
			mu.Unlock()
		}
		return err
	})
	return firstSeen
}

func firstErr(errs []error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
