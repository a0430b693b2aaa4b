package doctor

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// DownloadDirCheck verifies the download directory exists and is writable.
// If fix is true, a missing directory is created.
type DownloadDirCheck struct {
	dir string
	fix bool
}

// NewDownloadDirCheck creates a new download directory check.
func NewDownloadDirCheck(dir string, fix bool) *DownloadDirCheck {
	return &DownloadDirCheck{dir: dir, fix: fix}
}

func (c *DownloadDirCheck) Name() string {
	return "Downloads"
}

func (c *DownloadDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !c.fix {
			item := warn("Directory", c.dir+" does not exist yet")
			item.Fixable = true
			result.Items = append(result.Items, item)
			return result
		}

		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			result.Items = append(result.Items, fail("Directory", err.Error()))
			return result
		}

		result.Items = append(result.Items, pass("Directory", "created "+c.dir))
	case err != nil:
		result.Items = append(result.Items, fail("Directory", err.Error()))
		return result
	case !info.IsDir():
		result.Items = append(result.Items, fail("Directory", c.dir+" is not a directory"))
		return result
	default:
		result.Items = append(result.Items, pass("Directory", c.dir))
	}

	f, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		result.Items = append(result.Items, fail("Writable", err.Error()))
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Items = append(result.Items, pass("Writable", ""))

	return result
}
