package sandbox

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
)

func registerJSONLibrary(l *lua.State) {
	lua.NewLibrary(l, jsonLibrary())
	l.SetGlobal("json")
}

// jsonLibrary returns the functions available under the `json` table
// inside the sandbox.
func jsonLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// encode renders any Lua value as a JSON string.
		{Name: "encode", Function: func(l *lua.State) int {
			value, err := goValue(l, 1)
			if err != nil {
				lua.Errorf(l, "encoding json: %s", err.Error())
				return 0
			}
			data, err := json.Marshal(value)
			if err != nil {
				lua.Errorf(l, "encoding json: %s", err.Error())
				return 0
			}
			l.PushString(string(data))
			return 1
		}},
		// decode parses a JSON string into a Lua value.
		{Name: "decode", Function: func(l *lua.State) int {
			text := lua.CheckString(l, 1)
			var value any
			if err := json.Unmarshal([]byte(text), &value); err != nil {
				lua.Errorf(l, "decoding json: %s", err.Error())
				return 0
			}
			util.DeepPush(l, value)
			return 1
		}},
	}
}

func registerStringsLibrary(l *lua.State) {
	lua.NewLibrary(l, stringsLibrary())
	l.SetGlobal("strings")
}

// stringsLibrary returns the text utilities available under the
// `strings` table inside the sandbox. The base string library's global
// is scrubbed; this is the supported surface.
func stringsLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "upper", Function: func(l *lua.State) int {
			l.PushString(strings.ToUpper(lua.CheckString(l, 1)))
			return 1
		}},
		{Name: "lower", Function: func(l *lua.State) int {
			l.PushString(strings.ToLower(lua.CheckString(l, 1)))
			return 1
		}},
		{Name: "trim", Function: func(l *lua.State) int {
			l.PushString(strings.TrimSpace(lua.CheckString(l, 1)))
			return 1
		}},
		{Name: "contains", Function: func(l *lua.State) int {
			l.PushBoolean(strings.Contains(lua.CheckString(l, 1), lua.CheckString(l, 2)))
			return 1
		}},
		{Name: "has_prefix", Function: func(l *lua.State) int {
			l.PushBoolean(strings.HasPrefix(lua.CheckString(l, 1), lua.CheckString(l, 2)))
			return 1
		}},
		{Name: "has_suffix", Function: func(l *lua.State) int {
			l.PushBoolean(strings.HasSuffix(lua.CheckString(l, 1), lua.CheckString(l, 2)))
			return 1
		}},
		{Name: "replace", Function: func(l *lua.State) int {
			l.PushString(strings.ReplaceAll(lua.CheckString(l, 1), lua.CheckString(l, 2), lua.CheckString(l, 3)))
			return 1
		}},
		{Name: "split", Function: func(l *lua.State) int {
			parts := strings.Split(lua.CheckString(l, 1), lua.CheckString(l, 2))
			util.DeepPush(l, parts)
			return 1
		}},
		{Name: "join", Function: func(l *lua.State) int {
			value, err := goValue(l, 1)
			if err != nil {
				lua.Errorf(l, "joining strings: %s", err.Error())
				return 0
			}
			elements, ok := value.([]any)
			if !ok {
				lua.ArgumentError(l, 1, "expected an array of strings")
				return 0
			}
			parts := make([]string, 0, len(elements))
			for _, element := range elements {
				part, ok := element.(string)
				if !ok {
					lua.ArgumentError(l, 1, "expected an array of strings")
					return 0
				}
				parts = append(parts, part)
			}
			l.PushString(strings.Join(parts, lua.CheckString(l, 2)))
			return 1
		}},
	}
}

func registerTimeLibrary(l *lua.State) {
	lua.NewLibrary(l, timeLibrary())
	l.SetGlobal("time")
}

// timeLibrary returns the date/time utilities available under the
// `time` table inside the sandbox. It replaces the os.date/os.time
// surface that the restricted os library would otherwise provide.
func timeLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// now returns the current time as a Unix timestamp in milliseconds.
		{Name: "now", Function: func(l *lua.State) int {
			l.PushNumber(float64(time.Now().UnixMilli()))
			return 1
		}},
		// unix returns the current time as a Unix timestamp in seconds.
		{Name: "unix", Function: func(l *lua.State) int {
			l.PushNumber(float64(time.Now().Unix()))
			return 1
		}},
		// format renders a Unix millisecond timestamp in RFC 3339 form,
		// or with the given Go layout string.
		{Name: "format", Function: func(l *lua.State) int {
			millis := lua.CheckInteger(l, 1)
			layout := lua.OptString(l, 2, time.RFC3339)
			l.PushString(time.UnixMilli(int64(millis)).UTC().Format(layout))
			return 1
		}},
	}
}
