package config

type WorkerKeyStruct struct {
	LessonFanoutQueue string
}

var WorkerKey = &WorkerKeyStruct{
	LessonFanoutQueue: "lesson_fanout_queue",
}
