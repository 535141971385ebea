// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/dbaccess"
	"github.com/chainforge/chainforge/logger"
	"github.com/chainforge/chainforge/util"
	"github.com/chainforge/chainforge/version"
)

const (
	defaultLogFilename    = "counterd.log"
	defaultErrLogFilename = "counterd_err.log"
	defaultDbType         = dbaccess.DbTypeLevelDB
	defaultLogLevel       = "info"
	defaultBlockInterval  = time.Second
)

var (
	// Default configuration options
	defaultHomeDir = util.AppDataDir("counterd", false)
)

type configFlags struct {
	ShowVersion   bool          `short:"V" long:"version" description:"Display version information and exit"`
	DataDir       string        `short:"b" long:"datadir" description:"Directory to store data"`
	DbType        string        `long:"dbtype" description:"Database backend to use for the block and state stores"`
	LogLevel      string        `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	BlockInterval time.Duration `long:"blockinterval" description:"Interval between produced blocks"`
	MaxDelta      uint64        `long:"maxdelta" description:"Largest counter increment a produced block may carry"`
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		DataDir:       defaultHomeDir,
		DbType:        defaultDbType,
		LogLevel:      defaultLogLevel,
		BlockInterval: defaultBlockInterval,
		MaxDelta:      100,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	validDbType := false
	for _, dbType := range dbaccess.SupportedDbTypes {
		if cfg.DbType == dbType {
			validDbType = true
			break
		}
	}
	if !validDbType {
		return nil, errors.Errorf("invalid dbtype %q, supported types: %s",
			cfg.DbType, strings.Join(dbaccess.SupportedDbTypes, ", "))
	}

	logLevel, ok := logger.LevelFromString(cfg.LogLevel)
	if !ok {
		return nil, errors.Errorf("invalid loglevel %q", cfg.LogLevel)
	}

	if cfg.BlockInterval <= 0 {
		return nil, errors.New("blockinterval must be positive")
	}
	if cfg.MaxDelta == 0 {
		return nil, errors.New("maxdelta must be positive")
	}

	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "failed creating data directory %s",
			cfg.DataDir)
	}

	logFile := filepath.Join(cfg.DataDir, defaultLogFilename)
	errLogFile := filepath.Join(cfg.DataDir, defaultErrLogFilename)
	err = logger.InitLog(logFile, errLogFile)
	if err != nil {
		return nil, err
	}
	logger.SetLogLevels(logLevel)

	return cfg, nil
}
