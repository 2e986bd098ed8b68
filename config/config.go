package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/psvexport/rdbms/shared"
	"gopkg.in/yaml.v2"
)

const (
	MainDir                         = ".psvexport"
	ConnectionsConfigFileNamePrefix = "connections"
	ConnectionsConfigFileNameExt    = "yaml"
	ConnectionsConfigFileFullName   = ConnectionsConfigFileNamePrefix + "." + ConnectionsConfigFileNameExt
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
	err        error
}

func (k KeyNotFoundError) Error() string {
	if k.err != nil {
		return fmt.Sprintf("key %q not found in config file %q: %v", k.key, k.configFile, k.err)
	}
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML map of keys to values, stored with owner-only permissions since it can hold passwords.
type File struct {
	Dirname      string
	FileName     string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	c := &File{Dirname: dirName, FileName: filename}
	c.FullPath = filepath.Join(dirName, filename)
	c.data = make(map[string]interface{})
	return c
}

// NewConnectionsFile returns the connections File in the config home directory.
func NewConnectionsFile() (*File, error) {
	dir, err := GetConfigHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConfigFileWithDir(dir, ConnectionsConfigFileFullName), nil
}

// Get will fetch the key from the config File into variable, out.
// Supported out types are: string, ConnectionDetails.
// Return an error if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	d, ok := c.data[key]
	c.mu.Unlock()
	if !ok { // if the key was not found...
		switch val.Elem().Interface().(type) {
		case shared.ConnectionDetails:
			return KeyNotFoundError{c.FullPath, key, fmt.Errorf("missing database connection")}
		default:
			return KeyNotFoundError{configFile: c.FullPath, key: key}
		}
	}
	// Set the value.
	if err := mapstructure.Decode(d, out); err != nil {
		return fmt.Errorf("unable to decode key %q in config file %v: %w", key, c.FullPath, err)
	}
	return nil // we found the key so no error!
}

func (c *File) Set(key string, val interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	// Store the value in the same form as it would be read back from file.
	b, err := yaml.Marshal(val)
	if err != nil {
		return fmt.Errorf("error marshalling key %v for config file %v: %w", key, c.FullPath, err)
	}
	var generic interface{}
	if err = yaml.Unmarshal(b, &generic); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = generic
	return c.saveData()
}

func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Delete the key.
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{configFile: c.FullPath, key: key}
	}
	delete(c.data, key)
	return c.saveData()
}

// GetAllKeys returns the keys in the File in sorted order.
func (c *File) GetAllKeys() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

// ensureLoaded loads the data once. A missing file is treated as empty.
func (c *File) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataIsLoaded {
		return nil
	}
	err := c.loadData()
	var notFound FileNotFoundError
	if err != nil && !errors.As(err, &notFound) { // if the error is not a missing file (we create it on save)...
		return err
	}
	c.dataIsLoaded = true
	return nil
}

// loadData reads the YAML file. The caller must hold the lock.
func (c *File) loadData() error {
	b, err := os.ReadFile(c.FullPath)
	if os.IsNotExist(err) {
		return FileNotFoundError{c.FullPath}
	} else if err != nil {
		return err
	}
	if err = yaml.Unmarshal(b, &c.data); err != nil {
		return fmt.Errorf("error parsing config file %v: %w", c.FullPath, err)
	}
	if c.data == nil { // if the file was empty...
		c.data = make(map[string]interface{})
	}
	return nil
}

// saveData writes the YAML file. The caller must hold the lock.
func (c *File) saveData() error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data for config file %v: %w", c.FullPath, err)
	}
	if err = makeDir(c.Dirname); err != nil {
		return err
	}
	if err = os.WriteFile(c.FullPath, b, 0600); err != nil {
		return fmt.Errorf("error writing config file %v: %w", c.FullPath, err)
	}
	return nil
}

// String renders the File path.
func (c *File) String() string {
	return strings.TrimSpace(c.FullPath)
}
