package sqlitedbm

import "sync"

// argsPool holds bind argument slices sized for one full chunk.
var argsPool = &sync.Pool{
	New: func() any {
		return make([]any, 0, MaxQueryVars+1)
	},
}

func getArgs() []any {
	return argsPool.Get().([]any)[:0]
}

func putArgs(args []any) {
	clear(args[:cap(args)])
	argsPool.Put(args[:0])
}
