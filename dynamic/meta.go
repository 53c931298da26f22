package dynamic

import (
	"encoding/json"
	"os"
	"runtime/debug"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FunctionInfo describes the emulated function, read from the variables the
// harness exports.
type FunctionInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Memory   string `json:"memory"`
	LogGroup string `json:"log_group"`
	Region   string `json:"region"`
}

// RunnerInfo describes the lambda-local build.
type RunnerInfo struct {
	Module  string `json:"module"`
	Version string `json:"version"`
	Built   string `json:"built"`
	Go      string `json:"go"`
}

type WarehouseInfo struct {
	Local     string `json:"local"`
	Remote    string `json:"remote"`
	Namespace string `json:"namespace"`
}

type Meta struct {
	Function  FunctionInfo  `json:"function"`
	Runner    RunnerInfo    `json:"runner"`
	Warehouse WarehouseInfo `json:"warehouse"`
}

func functionInfo() FunctionInfo {
	return FunctionInfo{
		Name:     os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Version:  os.Getenv("AWS_LAMBDA_FUNCTION_VERSION"),
		Memory:   os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE"),
		LogGroup: os.Getenv("AWS_LAMBDA_LOG_GROUP_NAME"),
		Region:   os.Getenv("AWS_REGION"),
	}
}

func runnerInfo() RunnerInfo {
	info := RunnerInfo{}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = buildInfo.Main.Path
	info.Version = buildInfo.Main.Version
	info.Go = buildInfo.GoVersion

	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.time" {
			info.Built = setting.Value
			break
		}
	}

	return info
}

// Meta reports the emulated function, the runner build and the warehouse.
// extra is a JSON object whose keys are merged in without overriding.
func (d *Dynamic) Meta(extra string) string {
	meta := Meta{
		Function: functionInfo(),
		Runner:   runnerInfo(),
		Warehouse: WarehouseInfo{
			Local:     d.Warehouse.Local,
			Remote:    d.Warehouse.Remote,
			Namespace: d.Namespace,
		},
	}

	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	out := string(b)

	if !gjson.Valid(extra) || !gjson.Parse(extra).IsObject() {
		return out
	}
	gjson.Parse(extra).ForEach(func(key, value gjson.Result) bool {
		if k := key.String(); !gjson.Get(out, k).Exists() {
			if merged, err := sjson.SetRaw(out, k, value.Raw); err == nil {
				out = merged
			}
		}
		return true
	})
	return out
}
