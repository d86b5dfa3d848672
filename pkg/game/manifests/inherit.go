package manifests

// Inherit merges a loader profile over the version it inherits from.
// Child libraries come first, argument lists are appended, and the
// child's main class and arguments win over the parent's.
func Inherit(child, parent *VersionMetadata) *VersionMetadata {
	merged := *parent
	merged.ID = child.ID
	merged.InheritsFrom = ""
	if child.Type != "" {
		merged.Type = child.Type
	}
	if child.MainClass != "" {
		merged.MainClass = child.MainClass
	}
	if child.MinecraftArguments != "" {
		merged.MinecraftArguments = child.MinecraftArguments
	}
	if child.AssetIndex != nil {
		merged.AssetIndex = child.AssetIndex
	}
	if child.JavaVersion != nil {
		merged.JavaVersion = child.JavaVersion
	}
	if child.Downloads.Client != nil {
		merged.Downloads.Client = child.Downloads.Client
	}

	merged.Libraries = make([]Library, 0, len(child.Libraries)+len(parent.Libraries))
	merged.Libraries = append(merged.Libraries, child.Libraries...)
	merged.Libraries = append(merged.Libraries, parent.Libraries...)

	if child.Arguments != nil {
		args := &Arguments{}
		if parent.Arguments != nil {
			args.Game = append(args.Game, parent.Arguments.Game...)
			args.JVM = append(args.JVM, parent.Arguments.JVM...)
		}
		args.Game = append(args.Game, child.Arguments.Game...)
		args.JVM = append(args.JVM, child.Arguments.JVM...)
		merged.Arguments = args
	}
	return &merged
}
