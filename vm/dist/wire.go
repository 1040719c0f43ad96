package dist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("dist: unmarshal snapshot: %w", err)
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalSnapshotYAML serializes a Snapshot to YAML.
func MarshalSnapshotYAML(s *Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}

// UnmarshalSnapshotYAML deserializes a Snapshot from YAML.
func UnmarshalSnapshotYAML(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("dist: unmarshal snapshot yaml: %w", err)
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func checkVersion(s *Snapshot) error {
	if s.Version != FormatVersion {
		return fmt.Errorf("dist: unsupported snapshot version %d", s.Version)
	}
	return nil
}

// Digest returns the hex SHA-256 of the snapshot's type records in
// canonical CBOR. The runtime id and name are excluded, so equal
// hierarchies built by different runtimes share a digest.
func Digest(s *Snapshot) (string, error) {
	data, err := cborEncMode.Marshal(s.Types)
	if err != nil {
		return "", fmt.Errorf("dist: digest: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Marshal encodes s in the named format ("cbor" or "yaml").
func Marshal(s *Snapshot, format string) ([]byte, error) {
	switch format {
	case "", "cbor":
		return MarshalSnapshot(s)
	case "yaml":
		return MarshalSnapshotYAML(s)
	}
	return nil, fmt.Errorf("dist: unknown snapshot format %q", format)
}
