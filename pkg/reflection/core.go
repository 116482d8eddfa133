package reflection

import (
	"sync"

	cf "jsolve/pkg/classfile"
)

const (
	pub        = cf.AccPublic
	pubFinal   = cf.AccPublic | cf.AccFinal
	pubAbs     = cf.AccPublic | cf.AccAbstract
	pubItf     = cf.AccPublic | cf.AccInterface | cf.AccAbstract
	pubAnnot   = pubItf | cf.AccAnnotation
	constField = cf.AccPublic | cf.AccStatic | cf.AccFinal
	varargs    = cf.AccPublic | cf.AccVarargs
	varStatic  = cf.AccPublic | cf.AccStatic | cf.AccVarargs
	defaultM   = cf.AccPublic
)

const (
	obj    = "Ljava/lang/Object;"
	ser    = "Ljava/io/Serializable;"
	cln    = "Ljava/lang/Cloneable;"
	typeT  = "<T:Ljava/lang/Object;>"
	typeE  = "<E:Ljava/lang/Object;>"
	typeKV = "<K:Ljava/lang/Object;V:Ljava/lang/Object;>"
)

var (
	coreOnce sync.Once
	core     *Registry
)

// Core returns the shared registry of core library mirrors.
func Core() *Registry {
	coreOnce.Do(func() {
		core = NewRegistry()
		core.LoadCore()
	})
	return core
}

// LoadCore registers the core library surface: java.lang basics, collections, functional interfaces
// and streams.
func (r *Registry) LoadCore() {
	r.loadLang()
	r.loadBoxes()
	r.loadUtil()
	r.loadFunction()
	r.loadStream()
}

func (r *Registry) loadLang() {
	r.Define(pub, "java.lang.Object", "",
		Constructor(pub, "()V"),
		Public("equals", "(Ljava/lang/Object;)Z"),
		Public("hashCode", "()I"),
		Public("toString", "()Ljava/lang/String;"),
		Method(pubFinal, "getClass", "()Ljava/lang/Class<*>;"),
	)
	r.Define(pubItf, "java.io.Serializable", obj)
	r.Define(pubItf, "java.lang.Cloneable", obj)
	r.Define(pubItf, "java.lang.AutoCloseable", obj, Abstract("close", "()V"))
	r.Define(pubItf, "java.lang.Runnable", obj, Abstract("run", "()V"))
	r.Define(pubItf, "java.lang.CharSequence", obj,
		Abstract("length", "()I"),
		Abstract("charAt", "(I)C"),
		Abstract("toString", "()Ljava/lang/String;"),
	)
	r.Define(pubItf, "java.lang.Comparable", typeT+obj, Abstract("compareTo", "(TT;)I"))
	r.Define(pubItf, "java.lang.Iterable", typeT+obj,
		Abstract("iterator", "()Ljava/util/Iterator<TT;>;"),
		Method(defaultM, "forEach", "(Ljava/util/function/Consumer<-TT;>;)V"),
	)
	r.Define(pubFinal, "java.lang.String", obj+ser+"Ljava/lang/Comparable<Ljava/lang/String;>;Ljava/lang/CharSequence;",
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
		Constructor(pub, "([C)V"),
		Public("length", "()I"),
		Public("charAt", "(I)C"),
		Public("isEmpty", "()Z"),
		Public("substring", "(I)Ljava/lang/String;"),
		Public("substring", "(II)Ljava/lang/String;"),
		Public("indexOf", "(Ljava/lang/String;)I"),
		Public("indexOf", "(I)I"),
		Public("contains", "(Ljava/lang/CharSequence;)Z"),
		Public("startsWith", "(Ljava/lang/String;)Z"),
		Public("endsWith", "(Ljava/lang/String;)Z"),
		Public("toUpperCase", "()Ljava/lang/String;"),
		Public("toLowerCase", "()Ljava/lang/String;"),
		Public("trim", "()Ljava/lang/String;"),
		Public("concat", "(Ljava/lang/String;)Ljava/lang/String;"),
		Public("split", "(Ljava/lang/String;)[Ljava/lang/String;"),
		Public("toCharArray", "()[C"),
		Public("equals", "(Ljava/lang/Object;)Z"),
		Public("compareTo", "(Ljava/lang/String;)I"),
		Public("toString", "()Ljava/lang/String;"),
		Static("valueOf", "(Ljava/lang/Object;)Ljava/lang/String;"),
		Static("valueOf", "(I)Ljava/lang/String;"),
		Static("valueOf", "(J)Ljava/lang/String;"),
		Static("valueOf", "(D)Ljava/lang/String;"),
		Static("valueOf", "(C)Ljava/lang/String;"),
		Static("valueOf", "(Z)Ljava/lang/String;"),
		Method(varStatic, "format", "(Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/String;"),
		Method(varStatic, "join", "(Ljava/lang/CharSequence;[Ljava/lang/CharSequence;)Ljava/lang/String;"),
	)
	r.Define(pubFinal, "java.lang.StringBuilder", obj+ser+"Ljava/lang/CharSequence;",
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
		Public("append", "(Ljava/lang/String;)Ljava/lang/StringBuilder;"),
		Public("append", "(Ljava/lang/Object;)Ljava/lang/StringBuilder;"),
		Public("append", "(I)Ljava/lang/StringBuilder;"),
		Public("append", "(C)Ljava/lang/StringBuilder;"),
		Public("length", "()I"),
		Public("charAt", "(I)C"),
		Public("reverse", "()Ljava/lang/StringBuilder;"),
		Public("toString", "()Ljava/lang/String;"),
	)
	r.Define(pubFinal, "java.lang.Class", typeT+obj+ser,
		Public("getName", "()Ljava/lang/String;"),
		Public("getSimpleName", "()Ljava/lang/String;"),
		Public("isInstance", "(Ljava/lang/Object;)Z"),
		Public("cast", "(Ljava/lang/Object;)TT;"),
	)
	r.Define(pubAbs, "java.lang.Enum", "<E:Ljava/lang/Enum<TE;>;>"+obj+"Ljava/lang/Comparable<TE;>;"+ser,
		Method(pubFinal, "name", "()Ljava/lang/String;"),
		Method(pubFinal, "ordinal", "()I"),
		Method(pubFinal, "compareTo", "(TE;)I"),
		Static("valueOf", "<T:Ljava/lang/Enum<TT;>;>(Ljava/lang/Class<TT;>;Ljava/lang/String;)TT;"),
	)
	r.Define(pub, "java.lang.Throwable", obj+ser,
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
		Constructor(pub, "(Ljava/lang/String;Ljava/lang/Throwable;)V"),
		Public("getMessage", "()Ljava/lang/String;"),
		Public("getCause", "()Ljava/lang/Throwable;"),
		Public("printStackTrace", "()V"),
	)
	r.Define(pub, "java.lang.Exception", "Ljava/lang/Throwable;",
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
		Constructor(pub, "(Ljava/lang/String;Ljava/lang/Throwable;)V"),
	)
	r.Define(pub, "java.lang.RuntimeException", "Ljava/lang/Exception;",
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
		Constructor(pub, "(Ljava/lang/String;Ljava/lang/Throwable;)V"),
	)
	r.Define(pub, "java.lang.IllegalArgumentException", "Ljava/lang/RuntimeException;",
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/lang/String;)V"),
	)
	r.Define(pub, "java.io.PrintStream", obj+"Ljava/lang/AutoCloseable;",
		Public("println", "()V"),
		Public("println", "(Ljava/lang/String;)V"),
		Public("println", "(Ljava/lang/Object;)V"),
		Public("println", "(I)V"),
		Public("println", "(J)V"),
		Public("println", "(D)V"),
		Public("println", "(C)V"),
		Public("println", "(Z)V"),
		Public("print", "(Ljava/lang/String;)V"),
		Public("print", "(Ljava/lang/Object;)V"),
		Method(varargs, "printf", "(Ljava/lang/String;[Ljava/lang/Object;)Ljava/io/PrintStream;"),
		Public("close", "()V"),
	)
	r.Define(pubFinal, "java.lang.System", obj,
		Field(constField, "out", "Ljava/io/PrintStream;"),
		Field(constField, "err", "Ljava/io/PrintStream;"),
		Static("currentTimeMillis", "()J"),
		Static("nanoTime", "()J"),
		Static("getProperty", "(Ljava/lang/String;)Ljava/lang/String;"),
		Static("arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V"),
	)
	r.Define(pubFinal, "java.lang.Math", obj,
		Field(constField, "PI", "D"),
		Field(constField, "E", "D"),
		Static("abs", "(I)I"),
		Static("abs", "(J)J"),
		Static("abs", "(D)D"),
		Static("max", "(II)I"),
		Static("max", "(JJ)J"),
		Static("max", "(DD)D"),
		Static("min", "(II)I"),
		Static("min", "(JJ)J"),
		Static("min", "(DD)D"),
		Static("sqrt", "(D)D"),
		Static("pow", "(DD)D"),
		Static("random", "()D"),
	)
	r.Define(pubAnnot, "java.lang.Override", obj+"Ljava/lang/annotation/Annotation;")
	r.Define(pubAnnot, "java.lang.Deprecated", obj+"Ljava/lang/annotation/Annotation;")
	r.Define(pubAnnot, "java.lang.FunctionalInterface", obj+"Ljava/lang/annotation/Annotation;")
	r.Define(pubItf, "java.lang.annotation.Annotation", obj,
		Abstract("annotationType", "()Ljava/lang/Class<+Ljava/lang/annotation/Annotation;>;"),
	)
}

// box defines a numeric box type; code is the descriptor letter of the primitive it wraps.
func (r *Registry) box(name, code, parse string, extra ...Option) {
	self := "L" + internal(name) + ";"
	opts := []Option{
		Constructor(pub, "("+code+")V"),
		Field(constField, "MAX_VALUE", code),
		Field(constField, "MIN_VALUE", code),
		Static("valueOf", "("+code+")"+self),
		Static("valueOf", "(Ljava/lang/String;)"+self),
		Static(parse, "(Ljava/lang/String;)"+code),
		Static("toString", "("+code+")Ljava/lang/String;"),
		Static("compare", "("+code+code+")I"),
		Public("compareTo", "("+self+")I"),
		Public("equals", "(Ljava/lang/Object;)Z"),
		Public("toString", "()Ljava/lang/String;"),
	}
	r.Define(pubFinal, name, "Ljava/lang/Number;Ljava/lang/Comparable<"+self+">;", append(opts, extra...)...)
}

func (r *Registry) loadBoxes() {
	r.Define(pubAbs, "java.lang.Number", obj+ser,
		Constructor(pub, "()V"),
		Abstract("intValue", "()I"),
		Abstract("longValue", "()J"),
		Abstract("floatValue", "()F"),
		Abstract("doubleValue", "()D"),
	)
	r.box("java.lang.Integer", "I", "parseInt",
		Static("sum", "(II)I"),
		Static("max", "(II)I"),
		Static("min", "(II)I"),
	)
	r.box("java.lang.Long", "J", "parseLong")
	r.box("java.lang.Short", "S", "parseShort")
	r.box("java.lang.Byte", "B", "parseByte")
	r.box("java.lang.Float", "F", "parseFloat")
	r.box("java.lang.Double", "D", "parseDouble")
	r.Define(pubFinal, "java.lang.Boolean", obj+ser+"Ljava/lang/Comparable<Ljava/lang/Boolean;>;",
		Field(constField, "TRUE", "Ljava/lang/Boolean;"),
		Field(constField, "FALSE", "Ljava/lang/Boolean;"),
		Static("valueOf", "(Z)Ljava/lang/Boolean;"),
		Static("parseBoolean", "(Ljava/lang/String;)Z"),
		Public("booleanValue", "()Z"),
		Public("compareTo", "(Ljava/lang/Boolean;)I"),
	)
	r.Define(pubFinal, "java.lang.Character", obj+ser+"Ljava/lang/Comparable<Ljava/lang/Character;>;",
		Static("valueOf", "(C)Ljava/lang/Character;"),
		Static("isDigit", "(C)Z"),
		Static("isLetter", "(C)Z"),
		Static("isWhitespace", "(C)Z"),
		Static("toUpperCase", "(C)C"),
		Public("charValue", "()C"),
		Public("compareTo", "(Ljava/lang/Character;)I"),
	)
}

func (r *Registry) loadUtil() {
	r.Define(pubItf, "java.util.Iterator", typeE+obj,
		Abstract("hasNext", "()Z"),
		Abstract("next", "()TE;"),
	)
	r.Define(pubItf, "java.util.Comparator", typeT+obj,
		Abstract("compare", "(TT;TT;)I"),
		Abstract("equals", "(Ljava/lang/Object;)Z"),
		Method(defaultM, "reversed", "()Ljava/util/Comparator<TT;>;"),
		Static("comparing", "<T:Ljava/lang/Object;U::Ljava/lang/Comparable<-TU;>;>(Ljava/util/function/Function<-TT;+TU;>;)Ljava/util/Comparator<TT;>;"),
		Static("naturalOrder", "<T::Ljava/lang/Comparable<-TT;>;>()Ljava/util/Comparator<TT;>;"),
	)
	r.Define(pubItf, "java.util.Collection", typeE+obj+"Ljava/lang/Iterable<TE;>;",
		Abstract("size", "()I"),
		Abstract("isEmpty", "()Z"),
		Abstract("contains", "(Ljava/lang/Object;)Z"),
		Abstract("add", "(TE;)Z"),
		Abstract("remove", "(Ljava/lang/Object;)Z"),
		Abstract("addAll", "(Ljava/util/Collection<+TE;>;)Z"),
		Abstract("clear", "()V"),
		Abstract("toArray", "()[Ljava/lang/Object;"),
		Method(defaultM, "stream", "()Ljava/util/stream/Stream<TE;>;"),
		Method(defaultM, "removeIf", "(Ljava/util/function/Predicate<-TE;>;)Z"),
	)
	r.Define(pubItf, "java.util.List", typeE+obj+"Ljava/util/Collection<TE;>;",
		Abstract("get", "(I)TE;"),
		Abstract("set", "(ITE;)TE;"),
		Abstract("add", "(ITE;)V"),
		Abstract("remove", "(I)TE;"),
		Abstract("indexOf", "(Ljava/lang/Object;)I"),
		Abstract("subList", "(II)Ljava/util/List<TE;>;"),
		Method(defaultM, "sort", "(Ljava/util/Comparator<-TE;>;)V"),
		Method(varStatic, "of", "<E:Ljava/lang/Object;>([TE;)Ljava/util/List<TE;>;"),
		Static("copyOf", "<E:Ljava/lang/Object;>(Ljava/util/Collection<+TE;>;)Ljava/util/List<TE;>;"),
	)
	r.Define(pubItf, "java.util.Set", typeE+obj+"Ljava/util/Collection<TE;>;",
		Method(varStatic, "of", "<E:Ljava/lang/Object;>([TE;)Ljava/util/Set<TE;>;"),
	)
	r.Define(pub, "java.util.ArrayList", typeE+obj+"Ljava/util/List<TE;>;"+cln+ser,
		Constructor(pub, "()V"),
		Constructor(pub, "(I)V"),
		Constructor(pub, "(Ljava/util/Collection<+TE;>;)V"),
		Public("size", "()I"),
		Public("get", "(I)TE;"),
		Public("add", "(TE;)Z"),
		Public("ensureCapacity", "(I)V"),
		Public("trimToSize", "()V"),
	)
	r.Define(pub, "java.util.HashSet", typeE+obj+"Ljava/util/Set<TE;>;"+cln+ser,
		Constructor(pub, "()V"),
		Constructor(pub, "(Ljava/util/Collection<+TE;>;)V"),
	)
	r.Define(pubItf, "java.util.Map", typeKV+obj,
		Abstract("size", "()I"),
		Abstract("isEmpty", "()Z"),
		Abstract("get", "(Ljava/lang/Object;)TV;"),
		Abstract("put", "(TK;TV;)TV;"),
		Abstract("remove", "(Ljava/lang/Object;)TV;"),
		Abstract("containsKey", "(Ljava/lang/Object;)Z"),
		Abstract("keySet", "()Ljava/util/Set<TK;>;"),
		Abstract("values", "()Ljava/util/Collection<TV;>;"),
		Abstract("entrySet", "()Ljava/util/Set<Ljava/util/Map$Entry<TK;TV;>;>;"),
		Method(defaultM, "getOrDefault", "(Ljava/lang/Object;TV;)TV;"),
		Method(defaultM, "computeIfAbsent", "(TK;Ljava/util/function/Function<-TK;+TV;>;)TV;"),
		Method(defaultM, "forEach", "(Ljava/util/function/BiConsumer<-TK;-TV;>;)V"),
		Static("of", "<K:Ljava/lang/Object;V:Ljava/lang/Object;>()Ljava/util/Map<TK;TV;>;"),
		Static("of", "<K:Ljava/lang/Object;V:Ljava/lang/Object;>(TK;TV;)Ljava/util/Map<TK;TV;>;"),
	)
	r.Define(pubItf|cf.AccStatic, "java.util.Map.Entry", typeKV+obj,
		Outer("java.util.Map"),
		Abstract("getKey", "()TK;"),
		Abstract("getValue", "()TV;"),
		Abstract("setValue", "(TV;)TV;"),
	)
	r.Define(pub, "java.util.HashMap", typeKV+obj+"Ljava/util/Map<TK;TV;>;"+cln+ser,
		Constructor(pub, "()V"),
		Constructor(pub, "(I)V"),
		Constructor(pub, "(Ljava/util/Map<+TK;+TV;>;)V"),
	)
	r.Define(pubFinal, "java.util.Optional", typeT+obj,
		Static("of", "<T:Ljava/lang/Object;>(TT;)Ljava/util/Optional<TT;>;"),
		Static("ofNullable", "<T:Ljava/lang/Object;>(TT;)Ljava/util/Optional<TT;>;"),
		Static("empty", "<T:Ljava/lang/Object;>()Ljava/util/Optional<TT;>;"),
		Public("get", "()TT;"),
		Public("isPresent", "()Z"),
		Public("isEmpty", "()Z"),
		Public("orElse", "(TT;)TT;"),
		Public("orElseGet", "(Ljava/util/function/Supplier<+TT;>;)TT;"),
		Public("ifPresent", "(Ljava/util/function/Consumer<-TT;>;)V"),
		Public("filter", "(Ljava/util/function/Predicate<-TT;>;)Ljava/util/Optional<TT;>;"),
		Public("map", "<U:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TU;>;)Ljava/util/Optional<TU;>;"),
	)
	r.Define(pub, "java.util.Arrays", obj,
		Method(varStatic, "asList", "<T:Ljava/lang/Object;>([TT;)Ljava/util/List<TT;>;"),
		Static("stream", "<T:Ljava/lang/Object;>([TT;)Ljava/util/stream/Stream<TT;>;"),
		Static("sort", "([I)V"),
		Static("sort", "([Ljava/lang/Object;)V"),
		Static("toString", "([I)Ljava/lang/String;"),
		Static("toString", "([Ljava/lang/Object;)Ljava/lang/String;"),
	)
}

func (r *Registry) loadFunction() {
	const pkg = "java.util.function."
	r.Define(pubItf, pkg+"Function", "<T:Ljava/lang/Object;R:Ljava/lang/Object;>"+obj,
		Abstract("apply", "(TT;)TR;"),
		Method(defaultM, "andThen", "<V:Ljava/lang/Object;>(Ljava/util/function/Function<-TR;+TV;>;)Ljava/util/function/Function<TT;TV;>;"),
		Method(defaultM, "compose", "<V:Ljava/lang/Object;>(Ljava/util/function/Function<-TV;+TT;>;)Ljava/util/function/Function<TV;TR;>;"),
		Static("identity", "<T:Ljava/lang/Object;>()Ljava/util/function/Function<TT;TT;>;"),
	)
	r.Define(pubItf, pkg+"BiFunction", "<T:Ljava/lang/Object;U:Ljava/lang/Object;R:Ljava/lang/Object;>"+obj,
		Abstract("apply", "(TT;TU;)TR;"),
	)
	r.Define(pubItf, pkg+"Supplier", typeT+obj, Abstract("get", "()TT;"))
	r.Define(pubItf, pkg+"Consumer", typeT+obj,
		Abstract("accept", "(TT;)V"),
		Method(defaultM, "andThen", "(Ljava/util/function/Consumer<-TT;>;)Ljava/util/function/Consumer<TT;>;"),
	)
	r.Define(pubItf, pkg+"BiConsumer", "<T:Ljava/lang/Object;U:Ljava/lang/Object;>"+obj,
		Abstract("accept", "(TT;TU;)V"),
	)
	r.Define(pubItf, pkg+"Predicate", typeT+obj,
		Abstract("test", "(TT;)Z"),
		Method(defaultM, "negate", "()Ljava/util/function/Predicate<TT;>;"),
		Method(defaultM, "and", "(Ljava/util/function/Predicate<-TT;>;)Ljava/util/function/Predicate<TT;>;"),
		Method(defaultM, "or", "(Ljava/util/function/Predicate<-TT;>;)Ljava/util/function/Predicate<TT;>;"),
	)
	r.Define(pubItf, pkg+"UnaryOperator", typeT+obj+"Ljava/util/function/Function<TT;TT;>;",
		Static("identity", "<T:Ljava/lang/Object;>()Ljava/util/function/UnaryOperator<TT;>;"),
	)
	r.Define(pubItf, pkg+"BinaryOperator", typeT+obj+"Ljava/util/function/BiFunction<TT;TT;TT;>;")
}

func (r *Registry) loadStream() {
	const stream = "Ljava/util/stream/Stream<TT;>;"
	r.Define(pubItf, "java.util.stream.Stream", typeT+obj+"Ljava/lang/AutoCloseable;",
		Abstract("filter", "(Ljava/util/function/Predicate<-TT;>;)"+stream),
		Abstract("map", "<R:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TR;>;)Ljava/util/stream/Stream<TR;>;"),
		Abstract("flatMap", "<R:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+Ljava/util/stream/Stream<+TR;>;>;)Ljava/util/stream/Stream<TR;>;"),
		Abstract("forEach", "(Ljava/util/function/Consumer<-TT;>;)V"),
		Abstract("collect", "<R:Ljava/lang/Object;A:Ljava/lang/Object;>(Ljava/util/stream/Collector<-TT;TA;TR;>;)TR;"),
		Abstract("reduce", "(TT;Ljava/util/function/BinaryOperator<TT;>;)TT;"),
		Abstract("count", "()J"),
		Abstract("distinct", "()"+stream),
		Abstract("sorted", "()"+stream),
		Abstract("sorted", "(Ljava/util/Comparator<-TT;>;)"+stream),
		Abstract("limit", "(J)"+stream),
		Abstract("skip", "(J)"+stream),
		Abstract("anyMatch", "(Ljava/util/function/Predicate<-TT;>;)Z"),
		Abstract("allMatch", "(Ljava/util/function/Predicate<-TT;>;)Z"),
		Abstract("findFirst", "()Ljava/util/Optional<TT;>;"),
		Method(defaultM, "toList", "()Ljava/util/List<TT;>;"),
		Method(varStatic, "of", "<T:Ljava/lang/Object;>([TT;)Ljava/util/stream/Stream<TT;>;"),
		Static("empty", "<T:Ljava/lang/Object;>()Ljava/util/stream/Stream<TT;>;"),
	)
	r.Define(pubItf, "java.util.stream.Collector", "<T:Ljava/lang/Object;A:Ljava/lang/Object;R:Ljava/lang/Object;>"+obj,
		Abstract("supplier", "()Ljava/util/function/Supplier<TA;>;"),
		Abstract("accumulator", "()Ljava/util/function/BiConsumer<TA;TT;>;"),
		Abstract("combiner", "()Ljava/util/function/BinaryOperator<TA;>;"),
		Abstract("finisher", "()Ljava/util/function/Function<TA;TR;>;"),
	)
	r.Define(pubFinal, "java.util.stream.Collectors", obj,
		Static("toList", "<T:Ljava/lang/Object;>()Ljava/util/stream/Collector<TT;*Ljava/util/List<TT;>;>;"),
		Static("toSet", "<T:Ljava/lang/Object;>()Ljava/util/stream/Collector<TT;*Ljava/util/Set<TT;>;>;"),
		Static("joining", "()Ljava/util/stream/Collector<Ljava/lang/CharSequence;*Ljava/lang/String;>;"),
		Static("joining", "(Ljava/lang/CharSequence;)Ljava/util/stream/Collector<Ljava/lang/CharSequence;*Ljava/lang/String;>;"),
		Static("counting", "<T:Ljava/lang/Object;>()Ljava/util/stream/Collector<TT;*Ljava/lang/Long;>;"),
		Static("groupingBy", "<T:Ljava/lang/Object;K:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TK;>;)Ljava/util/stream/Collector<TT;*Ljava/util/Map<TK;Ljava/util/List<TT;>;>;>;"),
		Static("toMap", "<T:Ljava/lang/Object;K:Ljava/lang/Object;U:Ljava/lang/Object;>(Ljava/util/function/Function<-TT;+TK;>;Ljava/util/function/Function<-TT;+TU;>;)Ljava/util/stream/Collector<TT;*Ljava/util/Map<TK;TU;>;>;"),
	)
}

func internal(canonical string) string {
	b := []byte(canonical)
	for i, c := range b {
		if c == '.' {
			b[i] = '/'
		}
	}
	return string(b)
}
