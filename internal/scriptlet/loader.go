package scriptlet

import (
	"fmt"
	"os"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sirupsen/logrus"
)

// Load reads the script at path into a scriptlet of the given kind.
// The content is copied, the file is not needed afterwards.
func Load(kind models.ScriptletKind, path string) (*models.Scriptlet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewError(models.ErrScriptletRead, path,
			fmt.Errorf("failed to read %s script: %w", kind, err))
	}

	logrus.Debugf("Loaded %s script from %s (%d bytes)", kind, path, len(data))
	return &models.Scriptlet{
		Kind:    kind,
		Path:    path,
		Content: string(data),
	}, nil
}
