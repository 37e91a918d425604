package pipeline

import (
	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/workspace/disk"
	"github.com/go-sif/splitmerge/workspace/memory"
)

// CreateWorkspace creates the scratch Workspace described by conf
func CreateWorkspace(conf *config.Conf, logger log.FieldLogger) (splitmerge.Workspace, error) {
	if conf.Workspace == config.MemoryWorkspace {
		return memory.CreateWorkspace(&memory.Conf{
			MaxRecords: conf.MaxScratchRecords,
			Logger:     logger,
		})
	}
	maxBytes, err := conf.ScratchBytes()
	if err != nil {
		return nil, err
	}
	return disk.CreateWorkspace(&disk.Conf{
		Dir:         conf.ScratchDir,
		Compression: conf.Compression,
		MaxBytes:    maxBytes,
		Logger:      logger,
	})
}

// destroyWorkspace removes ws unless the configuration asks to keep it
func destroyWorkspace(ws splitmerge.Workspace, conf *config.Conf, logger log.FieldLogger) {
	if conf.KeepScratch {
		logger.Infof("Keeping scratch workspace %s with datasets %v", ws.ID(), ws.Datasets())
		return
	}
	if err := ws.Destroy(); err != nil {
		logger.WithError(err).Warnf("Unable to destroy scratch workspace %s", ws.ID())
	}
}
