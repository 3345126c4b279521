package info

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	yaml "gopkg.in/yaml.v2"

	"github.com/prebid/prebid-mediation/mediation"
)

// NewAdaptersEndpoint implements /info/adapters
func NewAdaptersEndpoint(adapters map[string]mediation.Adapter) httprouter.Handle {
	adapterNames := make([]string, 0, len(adapters))
	for name := range adapters {
		adapterNames = append(adapterNames, name)
	}
	sort.Strings(adapterNames)

	adaptersJson, err := json.Marshal(adapterNames)
	if err != nil {
		glog.Fatalf("error creating /info/adapters endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(adaptersJson); err != nil {
			glog.Errorf("error writing response to /info/adapters: %v", err)
		}
	}
}

// NewAdapterDetailsEndpoint implements /info/adapters/:adapterName
func NewAdapterDetailsEndpoint(infoDir string, adapters map[string]mediation.Adapter) (httprouter.Handle, error) {
	// Build all the responses up front, since there are a finite number and it won't use much memory.
	responses := make(map[string]json.RawMessage, len(adapters))
	for name, adapter := range adapters {
		response, err := prepareAdapterDetails(infoDir, name, adapter)
		if err != nil {
			return nil, err
		}
		responses[name] = response
	}

	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		forAdapter := ps.ByName("adapterName")
		response, ok := responses[forAdapter]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(response); err != nil {
			glog.Errorf("error writing response to /info/adapters/%s: %v", forAdapter, err)
		}
	}, nil
}

func prepareAdapterDetails(infoDir, name string, adapter mediation.Adapter) (json.RawMessage, error) {
	path := filepath.Join(infoDir, name+".yaml")
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading from file %s: %v", path, err)
	}

	var parsedInfo infoFile
	if err := yaml.Unmarshal(fileData, &parsedInfo); err != nil {
		return nil, fmt.Errorf("error parsing yaml in file %s: %v", path, err)
	}

	return json.Marshal(adapterDetails{
		infoFile:       parsedInfo,
		AdapterVersion: adapter.VersionInfo(),
		SDKVersion:     adapter.SDKVersionInfo(),
	})
}

type adapterDetails struct {
	infoFile
	AdapterVersion mediation.VersionInfo `json:"adapter_version"`
	SDKVersion     mediation.VersionInfo `json:"sdk_version"`
}

type infoFile struct {
	Maintainer   *maintainerInfo   `yaml:"maintainer" json:"maintainer"`
	Capabilities *capabilitiesInfo `yaml:"capabilities" json:"capabilities"`
	SDK          *sdkInfo          `yaml:"sdk" json:"sdk,omitempty"`
}

type maintainerInfo struct {
	Email string `yaml:"email" json:"email"`
}

type capabilitiesInfo struct {
	Formats []mediation.Format `yaml:"formats" json:"formats"`
}

type sdkInfo struct {
	Name        string `yaml:"name" json:"name"`
	ErrorDomain string `yaml:"error_domain" json:"error_domain"`
}
