package imageset

import (
	"path/filepath"
	"strings"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"
)

// Upload is a newly selected image waiting to be submitted.
type Upload struct {
	Name string
	Data []byte
}

const stageWorkers = 4

// Stage compresses a batch of uploads in parallel, keeping their order. A
// file that fails to compress is staged unmodified instead of failing the
// batch.
func Stage(uploads []Upload, opts CompressOptions, logger logrus.FieldLogger) []Upload {
	staged := make([]Upload, len(uploads))
	if len(uploads) == 0 {
		return staged
	}

	wp := workerpool.New(min(stageWorkers, len(uploads)))
	for i, u := range uploads {
		i, u := i, u
		wp.Submit(func() {
			data, reencoded, err := Compress(u.Data, opts)
			if err != nil {
				logger.WithError(err).WithField("file", u.Name).Warn("Image compression failed, using original file")
				staged[i] = u
				return
			}
			name := u.Name
			if reencoded {
				name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
			}
			staged[i] = Upload{Name: name, Data: data}
		})
	}
	wp.StopWait()
	return staged
}
